// Package types provides type definitions for the structured artifacts produced by the
// campaign pipeline stages.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Essence is the distilled core of a campaign, extracted once from the user's free-text
// description. It is replaced wholesale on regeneration, never merged.
type Essence struct {
	ValuePropositions []string `json:"value_propositions" validate:"required,min=1,dive,required"`
	PainPoints        []string `json:"pain_points"`
	CallToAction      string   `json:"call_to_action"`
	Tone              string   `json:"tone"`
	UniqueAngle       string   `json:"unique_angle"`
	TargetPersona     string   `json:"target_persona"`
}

// AudienceSelection is an opaque pointer to a previously materialized prospect list.
// The pipeline owns no internal structure of the list itself.
type AudienceSelection struct {
	ListID        string `json:"list_id" validate:"required"`
	Name          string `json:"name,omitempty"`
	ProspectCount int    `json:"prospect_count,omitempty" validate:"gte=0"`
}
