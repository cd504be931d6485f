package types

import "time"

// PersonalizedEmail is a pitch instantiated for one specific prospect using that
// prospect's research findings.
type PersonalizedEmail struct {
	ProspectID    string            `json:"prospect_id" validate:"required"`
	ProspectEmail string            `json:"prospect_email" validate:"required"`
	Subject       string            `json:"subject" validate:"required"`
	Body          string            `json:"body" validate:"required"`
	FollowUps     []FollowUp        `json:"follow_ups,omitempty"`
	VariablesUsed map[string]string `json:"variables_used,omitempty"`
}

// DispatchReceipt is the dispatch stage's artifact: the personalized emails that were
// handed to the delivery engine plus its confirmation. The pipeline does not track
// per-recipient delivery status beyond this.
type DispatchReceipt struct {
	Emails       []PersonalizedEmail `json:"emails" validate:"required,min=1,dive"`
	SegmentID    string              `json:"segment_id"`
	ListID       string              `json:"list_id"`
	Confirmation string              `json:"confirmation"`
	DispatchedAt time.Time           `json:"dispatched_at"`
}
