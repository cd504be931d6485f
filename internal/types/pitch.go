package types

// FollowUp is one scheduled follow-up message inside a pitch sequence.
type FollowUp struct {
	DelayDays int    `json:"delay_days" validate:"gte=0"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Pitch is the message template generated for one segment. Pitches are stored sparsely
// by segment id: absence of an entry means "not yet generated", which is distinct from
// an empty pitch.
type Pitch struct {
	PitchAngle               string     `json:"pitch_angle"`
	KeyMessages              []string   `json:"key_messages"`
	SubjectLines             []string   `json:"subject_lines" validate:"required,min=1"`
	BodyTemplate             string     `json:"body_template" validate:"required"`
	FollowUpTemplates        []FollowUp `json:"follow_up_templates"`
	PersonalizationVariables []string   `json:"personalization_variables"`
}
