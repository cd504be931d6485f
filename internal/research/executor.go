package research

import (
	"context"
	"strings"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/prospects"
)

// Executor adapts Enrich to the pipeline's stage executor contract.
type Executor struct {
	Client   llm.Client
	Provider prospects.Provider
	Opts     Options
}

// Stage identifies the research stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StageResearch
}

// Execute resolves the selected audience and researches every prospect in it.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	list, err := e.Provider.GetList(ctx, in.Audience.ListID)
	if err != nil {
		return nil, err
	}

	opts := e.Opts
	if opts.Context == "" && in.Essence != nil {
		opts.Context = essenceContext(in.Essence.ValuePropositions, in.Essence.TargetPersona)
	}
	return Enrich(ctx, e.Client, list, opts)
}

// essenceContext condenses the essence into prompt context for per-prospect research.
func essenceContext(valueProps []string, persona string) string {
	var sb strings.Builder
	sb.WriteString("We are selling: ")
	sb.WriteString(strings.Join(valueProps, "; "))
	if persona != "" {
		sb.WriteString(". Target persona: ")
		sb.WriteString(persona)
	}
	return sb.String()
}
