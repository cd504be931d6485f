// Package segmenting groups researched prospects into audience segments with shared
// characteristics and a tailored messaging angle.
package segmenting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/prompts"
	"github.com/jonathan/campaign-composer/internal/schemas"
	"github.com/jonathan/campaign-composer/internal/types"
)

// Segment derives a SegmentPlan from the successful research records, the campaign
// goals text, and the campaign essence. Records carrying error markers are excluded;
// at least one successful record is required.
func Segment(ctx context.Context, client llm.Client, batch []types.ResearchRecord, goals string, essence *types.Essence) (*types.SegmentPlan, error) {
	successful := types.SuccessfulRecords(batch)
	if len(successful) == 0 {
		return nil, &ValidationError{Field: "research", Message: "no successful research records to segment"}
	}
	if essence == nil {
		return nil, &ValidationError{Field: "essence", Message: "campaign essence is required"}
	}

	prompt, err := buildSegmentPrompt(successful, goals, essence)
	if err != nil {
		return nil, err
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate segments", Cause: err}
	}

	if err := schemas.Validate("segment_plan.json", responseText); err != nil {
		return nil, &ParseError{Message: "segment response does not match schema", Cause: err}
	}

	var plan types.SegmentPlan
	if err := json.Unmarshal([]byte(responseText), &plan); err != nil {
		return nil, &ParseError{Message: "failed to parse segment JSON", Cause: err}
	}

	if err := postProcess(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func buildSegmentPrompt(records []types.ResearchRecord, goals string, essence *types.Essence) (string, error) {
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode research records", Cause: err}
	}
	essenceJSON, err := json.MarshalIndent(essence, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode essence", Cause: err}
	}

	template := prompts.MustGet("campaign.json", "segment-audience")
	return prompts.Format(template, map[string]string{
		"Essence": string(essenceJSON),
		"Goals":   goals,
		"Records": string(recordsJSON),
	}), nil
}

// postProcess assigns missing segment ids, enforces id uniqueness, clamps estimates,
// and defaults missing priorities to medium.
func postProcess(plan *types.SegmentPlan) error {
	if len(plan.Segments) == 0 {
		return &ValidationError{Field: "segments", Message: "at least one segment is required"}
	}

	seen := make(map[string]bool, len(plan.Segments))
	for i := range plan.Segments {
		seg := &plan.Segments[i]

		seg.ID = strings.TrimSpace(seg.ID)
		if seg.ID == "" || seen[seg.ID] {
			seg.ID = fmt.Sprintf("seg_%d", i+1)
		}
		for seen[seg.ID] {
			seg.ID += "x"
		}
		seen[seg.ID] = true

		if strings.TrimSpace(seg.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("segments[%d].name", i), Message: "segment name is required"}
		}

		seg.SizeEstimatePct = clampPct(seg.SizeEstimatePct)
		switch seg.Priority {
		case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		default:
			seg.Priority = types.PriorityMedium
		}
	}

	plan.UnmatchedPct = clampPct(plan.UnmatchedPct)
	return nil
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
