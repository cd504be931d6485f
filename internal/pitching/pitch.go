// Package pitching generates the message template for one audience segment: subject
// lines, a body template with personalization placeholders, and follow-ups.
package pitching

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/prompts"
	"github.com/jonathan/campaign-composer/internal/schemas"
	"github.com/jonathan/campaign-composer/internal/types"
)

// MaxSampleRecords bounds how many research records are included in the pitch prompt.
const MaxSampleRecords = 5

// Generate writes a pitch for the segment, grounded in the campaign essence and a
// sample of the segment's researched prospects. Regenerating a pitch overwrites only
// that segment's entry; unrelated pitches are untouched by the store's upsert.
func Generate(ctx context.Context, client llm.Client, segment *types.Segment, essence *types.Essence, batch []types.ResearchRecord) (*types.Pitch, error) {
	if segment == nil {
		return nil, &ValidationError{Field: "segment", Message: "segment is required"}
	}
	if essence == nil {
		return nil, &ValidationError{Field: "essence", Message: "campaign essence is required"}
	}

	prompt, err := buildPitchPrompt(segment, essence, SampleRecords(batch, MaxSampleRecords))
	if err != nil {
		return nil, err
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate pitch", Cause: err}
	}

	if err := schemas.Validate("pitch.json", responseText); err != nil {
		return nil, &ParseError{Message: "pitch response does not match schema", Cause: err}
	}

	var pitch types.Pitch
	if err := json.Unmarshal([]byte(responseText), &pitch); err != nil {
		return nil, &ParseError{Message: "failed to parse pitch JSON", Cause: err}
	}

	if err := postProcess(&pitch); err != nil {
		return nil, err
	}
	return &pitch, nil
}

// SampleRecords returns up to limit successful records for prompt grounding.
func SampleRecords(batch []types.ResearchRecord, limit int) []types.ResearchRecord {
	successful := types.SuccessfulRecords(batch)
	if len(successful) > limit {
		successful = successful[:limit]
	}
	return successful
}

func buildPitchPrompt(segment *types.Segment, essence *types.Essence, sample []types.ResearchRecord) (string, error) {
	segmentJSON, err := json.MarshalIndent(segment, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode segment", Cause: err}
	}
	essenceJSON, err := json.MarshalIndent(essence, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode essence", Cause: err}
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", &ParseError{Message: "failed to encode research sample", Cause: err}
	}

	template := prompts.MustGet("campaign.json", "generate-pitch")
	return prompts.Format(template, map[string]string{
		"Essence": string(essenceJSON),
		"Segment": string(segmentJSON),
		"Sample":  string(sampleJSON),
	}), nil
}

func postProcess(pitch *types.Pitch) error {
	pitch.SubjectLines = dropEmpty(pitch.SubjectLines)
	pitch.KeyMessages = dropEmpty(pitch.KeyMessages)
	pitch.PersonalizationVariables = dropEmpty(pitch.PersonalizationVariables)

	if len(pitch.SubjectLines) == 0 {
		return &ValidationError{Field: "subject_lines", Message: "at least one subject line is required"}
	}
	if strings.TrimSpace(pitch.BodyTemplate) == "" {
		return &ValidationError{Field: "body_template", Message: "body template is required"}
	}
	return nil
}

func dropEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
