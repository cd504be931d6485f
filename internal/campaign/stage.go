// Package campaign implements the campaign-construction pipeline: the ordered stage
// catalog, the artifact store, the stage executor contract, and the controller state
// machine that gates progression between stages.
package campaign

// StageID identifies one of the six ordered pipeline stages.
type StageID string

// The pipeline stages, in catalog order.
const (
	StageDescribe       StageID = "describe"
	StageSelectAudience StageID = "select_audience"
	StageResearch       StageID = "research"
	StageSegment        StageID = "segment"
	StagePitch          StageID = "pitch"
	StageDispatch       StageID = "dispatch"
)

// StageInfo describes one stage for iteration and display. It carries no gating logic.
type StageInfo struct {
	ID          StageID `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

var catalog = []StageInfo{
	{StageDescribe, "Describe", "Describe the campaign and extract its essence"},
	{StageSelectAudience, "Select audience", "Choose the prospect list to target"},
	{StageResearch, "Research", "Research each prospect in the selected list"},
	{StageSegment, "Segment", "Group researched prospects into audience segments"},
	{StagePitch, "Pitch", "Generate a message template for each segment"},
	{StageDispatch, "Send", "Personalize emails and hand them to delivery"},
}

// Stages returns the ordered stage catalog. The returned slice is a copy.
func Stages() []StageInfo {
	out := make([]StageInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether s names a known stage.
func (s StageID) Valid() bool {
	return stageIndex(s) >= 0
}

func stageIndex(s StageID) int {
	for i, info := range catalog {
		if info.ID == s {
			return i
		}
	}
	return -1
}

// nextStage returns the stage after s in catalog order, or false at the end.
func nextStage(s StageID) (StageID, bool) {
	i := stageIndex(s)
	if i < 0 || i == len(catalog)-1 {
		return s, false
	}
	return catalog[i+1].ID, true
}

// prevStage returns the stage before s in catalog order, or false at the start.
func prevStage(s StageID) (StageID, bool) {
	i := stageIndex(s)
	if i <= 0 {
		return s, false
	}
	return catalog[i-1].ID, true
}
