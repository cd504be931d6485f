// Package essence extracts the structured campaign essence from a free-text campaign
// description using LLM extraction.
package essence

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/prompts"
	"github.com/jonathan/campaign-composer/internal/schemas"
	"github.com/jonathan/campaign-composer/internal/types"
)

// MaxDescriptionLen is the longest campaign description accepted.
const MaxDescriptionLen = 2000

// Extract derives a campaign Essence from the description text. The audience hint is
// optional context, not a constraint.
func Extract(ctx context.Context, client llm.Client, description, audienceHint string) (*types.Essence, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if len(description) > MaxDescriptionLen {
		return nil, &ValidationError{Field: "description", Message: "description exceeds 2000 characters"}
	}

	prompt := buildExtractionPrompt(description, audienceHint)

	// Essence extraction requires real reasoning about the offering.
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate essence", Cause: err}
	}

	if err := schemas.Validate("essence.json", responseText); err != nil {
		return nil, &ParseError{Message: "essence response does not match schema", Cause: err}
	}

	var result types.Essence
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		return nil, &ParseError{Message: "failed to parse essence JSON", Cause: err}
	}

	if err := postProcess(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func buildExtractionPrompt(description, audienceHint string) string {
	template := prompts.MustGet("campaign.json", "extract-essence")
	return prompts.Format(template, map[string]string{
		"Description":  description,
		"AudienceHint": audienceHint,
	})
}

// postProcess drops empty strings and verifies the essence is usable.
func postProcess(e *types.Essence) error {
	e.ValuePropositions = dropEmpty(e.ValuePropositions)
	e.PainPoints = dropEmpty(e.PainPoints)
	e.CallToAction = strings.TrimSpace(e.CallToAction)
	e.Tone = strings.TrimSpace(e.Tone)
	e.UniqueAngle = strings.TrimSpace(e.UniqueAngle)
	e.TargetPersona = strings.TrimSpace(e.TargetPersona)

	if len(e.ValuePropositions) == 0 {
		return &ValidationError{Field: "value_propositions", Message: "at least one value proposition is required"}
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
