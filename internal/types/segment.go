package types

import "fmt"

// Segment priority levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// SegmentCriteria describes the attributes that place a prospect in a segment.
// Every set is optional.
type SegmentCriteria struct {
	Industries    []string `json:"industries,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	CompanySizes  []string `json:"company_sizes,omitempty"`
	KeyIndicators []string `json:"key_indicators,omitempty"`
}

// Segment is a derived sub-audience with shared characteristics and a tailored
// messaging angle. Name and MessagingAngle are the only user-editable fields.
type Segment struct {
	ID              string          `json:"id" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	Criteria        SegmentCriteria `json:"criteria"`
	SizeEstimatePct int             `json:"size_estimate_pct" validate:"gte=0,lte=100"`
	Characteristics string          `json:"characteristics"`
	PainPoints      []string        `json:"pain_points"`
	MessagingAngle  string          `json:"messaging_angle"`
	Priority        string          `json:"priority" validate:"oneof=high medium low"`
}

// SegmentPlan is the full output of the segment stage. SizeEstimatePct values and
// UnmatchedPct are advisory estimates; they are not required to sum to 100.
type SegmentPlan struct {
	Segments     []Segment `json:"segments" validate:"required,min=1,dive"`
	Strategy     string    `json:"strategy"`
	UnmatchedPct int       `json:"unmatched_pct" validate:"gte=0,lte=100"`
}

// CheckUniqueIDs verifies that segment ids are unique within the plan.
func (p *SegmentPlan) CheckUniqueIDs() error {
	seen := make(map[string]bool, len(p.Segments))
	for _, seg := range p.Segments {
		if seen[seg.ID] {
			return fmt.Errorf("duplicate segment id %q", seg.ID)
		}
		seen[seg.ID] = true
	}
	return nil
}

// FindSegment returns the segment with the given id, or nil.
func (p *SegmentPlan) FindSegment(id string) *Segment {
	for i := range p.Segments {
		if p.Segments[i].ID == id {
			return &p.Segments[i]
		}
	}
	return nil
}

// SegmentPatch carries the user-editable segment fields. A nil field means
// "leave unchanged"; id, criteria, and estimates can never be patched.
type SegmentPatch struct {
	Name           *string `json:"name,omitempty"`
	MessagingAngle *string `json:"messaging_angle,omitempty"`
}
