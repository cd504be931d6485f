// Package research enriches each prospect in a selected audience with structured
// findings: company info, industry insights, persona details, trigger events, and
// personalization hooks.
//
// Research is a batch operation with per-record failure: one prospect erroring marks
// that record, not the batch. A batch is usable downstream as long as at least one
// record succeeded.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/prompts"
	"github.com/jonathan/campaign-composer/internal/prospects"
	"github.com/jonathan/campaign-composer/internal/schemas"
	"github.com/jonathan/campaign-composer/internal/types"
)

// DefaultConcurrency bounds how many prospects are researched at once.
const DefaultConcurrency = 4

// Options configures a research run.
type Options struct {
	// Concurrency bounds parallel prospect research. Zero means DefaultConcurrency.
	Concurrency int
	// UseBrowser enables headless rendering for JavaScript-heavy prospect sites.
	UseBrowser bool
	// Context is free-text campaign context included in each research prompt,
	// typically a summary of the extracted essence.
	Context string
}

// Enrich researches every prospect in the list and returns one record per prospect,
// in list order. Individual failures are recorded on the record's error marker; the
// returned error is non-nil only when the whole batch could not run.
func Enrich(ctx context.Context, client llm.Client, list *prospects.List, opts Options) ([]types.ResearchRecord, error) {
	if list == nil || len(list.Prospects) == 0 {
		return nil, &BatchError{Message: "prospect list is empty"}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	records := make([]types.ResearchRecord, len(list.Prospects))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range list.Prospects {
		g.Go(func() error {
			records[i] = researchProspect(gCtx, client, p, opts)
			return nil
		})
	}
	// Workers never return errors; per-prospect failures live on the records.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &BatchError{Message: "research canceled", Cause: err}
	}
	return records, nil
}

// researchProspect produces the record for one prospect. Failures become the record's
// error marker so the rest of the batch is unaffected.
func researchProspect(ctx context.Context, client llm.Client, p prospects.Prospect, opts Options) types.ResearchRecord {
	record := types.ResearchRecord{
		ProspectID:    p.ID,
		ProspectEmail: p.Email,
	}

	signals := ""
	if p.Website != "" {
		text, err := CollectSiteSignals(ctx, p.Website, opts.UseBrowser)
		if err == nil {
			signals = text
		}
		// A failed crawl is not fatal; the prompt just carries fewer signals.
	}

	prompt := buildResearchPrompt(p, signals, opts.Context)
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		record.Error = fmt.Sprintf("generation failed: %v", err)
		return record
	}

	if err := schemas.Validate("research_findings.json", responseText); err != nil {
		record.Error = fmt.Sprintf("malformed findings: %v", err)
		return record
	}

	var findings types.ResearchFindings
	if err := json.Unmarshal([]byte(responseText), &findings); err != nil {
		record.Error = fmt.Sprintf("failed to parse findings: %v", err)
		return record
	}

	record.Findings = &findings
	return record
}

func buildResearchPrompt(p prospects.Prospect, signals, campaignContext string) string {
	template := prompts.MustGet("campaign.json", "research-prospect")
	return prompts.Format(template, map[string]string{
		"Email":    p.Email,
		"Name":     strings.TrimSpace(p.FirstName + " " + p.LastName),
		"Company":  p.Company,
		"Title":    p.Title,
		"Industry": p.Industry,
		"Signals":  signals,
		"Context":  campaignContext,
	})
}
