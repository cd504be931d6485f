package campaign

import (
	"context"

	"github.com/jonathan/campaign-composer/internal/types"
)

// Input carries a stage executor's parameters: the caller-supplied free text plus the
// prior artifacts the controller reads from the store on the executor's behalf.
// Executors never touch the store; they return values and the controller writes them.
type Input struct {
	// Caller-supplied parameters.
	Description  string // describe: campaign description text (at most MaxDescriptionLen chars)
	AudienceHint string // describe: optional target-audience hint
	ListID       string // select_audience: prospect list reference
	Goals        string // segment: campaign goals text
	SegmentID    string // pitch: segment to generate for

	// Prior artifacts, populated by the controller.
	Essence  *types.Essence
	Audience *types.AudienceSelection
	Research []types.ResearchRecord
	Segment  *types.Segment
	Pitches  map[string]types.Pitch
}

// MaxDescriptionLen is the longest campaign description the describe stage accepts.
const MaxDescriptionLen = 2000

// Executor is the uniform contract a stage's external call must honor. Execute is
// single-shot: the engine performs no implicit retry, and a failed call must leave
// its inputs untouched. The returned artifact must match the stage's expected shape
// (types.Pitch values for the pitch stage, which are upserted by segment id).
type Executor interface {
	Stage() StageID
	Execute(ctx context.Context, in Input) (any, error)
}

// ProgressEvent reports one pipeline occurrence to an observing caller.
type ProgressEvent struct {
	Stage   StageID `json:"stage"`
	Message string  `json:"message"`
	Err     string  `json:"error,omitempty"`
}

// ProgressCallback is invoked by the controller as stages run. It must be fast;
// it is called synchronously on the controller's goroutine.
type ProgressCallback func(event ProgressEvent)
