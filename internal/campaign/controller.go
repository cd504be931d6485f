package campaign

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/campaign-composer/internal/types"
)

// Controller owns one pipeline instance: the current stage, the set of completed
// stages, and exclusive write access to the artifact store. Stage executors are
// invoked one at a time by explicit caller commands; the controller never launches
// a stage on its own.
//
// Controllers are constructible values, not process-wide state: two campaigns being
// built concurrently each get their own controller and store.
type Controller struct {
	mu         sync.Mutex
	store      *Store
	executors  map[StageID]Executor
	current    StageID
	completed  map[StageID]bool
	onProgress ProgressCallback
}

// Option configures a Controller.
type Option func(*Controller)

// WithProgress registers a callback invoked as stages run.
func WithProgress(cb ProgressCallback) Option {
	return func(c *Controller) { c.onProgress = cb }
}

// New creates a controller at the initial state: current stage describe, nothing
// completed, empty store.
func New(store *Store, executors []Executor, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		executors: make(map[StageID]Executor, len(executors)),
		current:   StageDescribe,
		completed: make(map[StageID]bool),
	}
	for _, ex := range executors {
		c.executors[ex.Stage()] = ex
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the artifact store for read access.
func (c *Controller) Store() *Store {
	return c.store
}

// CurrentStage returns the stage the pipeline is currently on.
func (c *Controller) CurrentStage() StageID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CompletedStages returns the completed stage ids in catalog order.
func (c *Controller) CompletedStages() []StageID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []StageID
	for _, info := range catalog {
		if c.completed[info.ID] {
			out = append(out, info.ID)
		}
	}
	return out
}

// CanAdvance reports whether the current stage's completion predicate holds against
// the artifact store.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	return c.stageComplete(current)
}

// stageComplete evaluates a stage's completion predicate.
func (c *Controller) stageComplete(stage StageID) bool {
	switch stage {
	case StageDescribe:
		return c.store.Essence() != nil
	case StageSelectAudience:
		return c.store.Audience() != nil
	case StageResearch:
		return countSuccessful(c.store.Research()) > 0
	case StageSegment:
		plan := c.store.SegmentPlan()
		return plan != nil && len(plan.Segments) > 0
	case StagePitch:
		return len(c.store.Pitches()) > 0
	case StageDispatch:
		receipt := c.store.Dispatch()
		return receipt != nil && len(receipt.Emails) > 0
	}
	return false
}

// Advance marks the current stage completed and moves to the next stage in catalog
// order. Fails with NotReadyError if the current stage's completion predicate does
// not hold; a failed Advance changes nothing. Past the last stage it is a no-op.
func (c *Controller) Advance() error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if !c.stageComplete(current) {
		return &NotReadyError{Stage: current, Reason: "completion predicate does not hold"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed[current] = true
	if next, ok := nextStage(current); ok {
		c.current = next
	}
	return nil
}

// Retreat moves the current stage back one step. It does not remove the stage from
// the completed set and clears no artifacts; re-entering a completed stage re-renders
// its existing artifact. At the first stage it is a no-op.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := prevStage(c.current); ok {
		c.current = prev
	}
}

// GoTo jumps to an arbitrary stage. Navigation is not forced strictly linear: any
// stage whose predecessor has been completed once is reachable.
func (c *Controller) GoTo(stage StageID) error {
	if !stage.Valid() {
		return &UnknownStageError{Stage: stage}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := prevStage(stage); ok && !c.completed[prev] {
		return &NotReadyError{Stage: prev, Reason: "predecessor has not been completed"}
	}
	c.current = stage
	return nil
}

// RunStage invokes the matching stage executor and writes its result into the
// artifact store. The call blocks until the executor finishes or ctx is done;
// callers wanting asynchrony run it on their own goroutine.
//
// A failed call surfaces ExecutionFailedError and leaves the state machine and the
// stage's prior artifact exactly as they were. A successful call writes the artifact
// even when the stage is no longer current (a late-arriving response is stored), but
// never triggers a state transition: advancing is always an explicit caller command.
func (c *Controller) RunStage(ctx context.Context, stage StageID, in Input) (any, error) {
	ex, ok := c.executors[stage]
	if !ok {
		return nil, &UnknownStageError{Stage: stage}
	}
	if err := c.checkPrecondition(stage, &in); err != nil {
		return nil, err
	}

	c.emit(ProgressEvent{Stage: stage, Message: "running"})
	artifact, err := ex.Execute(ctx, in)
	if err != nil {
		failure := asExecutionFailure(stage, err)
		c.emit(ProgressEvent{Stage: stage, Message: "failed", Err: failure.Error()})
		return nil, failure
	}

	if err := c.writeResult(stage, in, artifact); err != nil {
		return nil, err
	}
	c.emit(ProgressEvent{Stage: stage, Message: "completed"})
	return artifact, nil
}

// checkPrecondition verifies the stage's input contract against the store and fills
// in the prior artifacts the executor needs.
func (c *Controller) checkPrecondition(stage StageID, in *Input) error {
	switch stage {
	case StageDescribe:
		if len(in.Description) > MaxDescriptionLen {
			return &InvalidArtifactError{Stage: stage, Message: "description exceeds maximum length"}
		}

	case StageSelectAudience:
		essence := c.store.Essence()
		if essence == nil {
			return &NotReadyError{Stage: StageDescribe, Reason: "essence has not been extracted"}
		}
		in.Essence = essence

	case StageResearch:
		audience := c.store.Audience()
		if audience == nil {
			return &NotReadyError{Stage: StageSelectAudience, Reason: "no audience selected"}
		}
		in.Audience = audience
		in.Essence = c.store.Essence()

	case StageSegment:
		batch := c.store.Research()
		if countSuccessful(batch) == 0 {
			return &NotReadyError{Stage: StageResearch, Reason: "no successful research records"}
		}
		in.Research = batch
		in.Essence = c.store.Essence()

	case StagePitch:
		plan := c.store.SegmentPlan()
		if plan == nil || len(plan.Segments) == 0 {
			return &NotReadyError{Stage: StageSegment, Reason: "no segments available"}
		}
		seg := plan.FindSegment(in.SegmentID)
		if seg == nil {
			return &UnknownSegmentError{SegmentID: in.SegmentID}
		}
		in.Segment = seg
		in.Essence = c.store.Essence()
		in.Research = c.store.Research()

	case StageDispatch:
		pitches := c.store.Pitches()
		if len(pitches) == 0 {
			return &NotReadyError{Stage: StagePitch, Reason: "no pitch has been generated"}
		}
		in.Pitches = pitches
		in.Research = c.store.Research()
		in.Audience = c.store.Audience()
		// Segment order decides which pitch applies when several exist.
		if plan := c.store.SegmentPlan(); plan != nil {
			in.Segment = firstPitchedSegment(plan, pitches)
		}

	default:
		return &UnknownStageError{Stage: stage}
	}
	return nil
}

// writeResult stores a successful executor result: targeted upsert for the pitch
// stage, full replace for every other stage.
func (c *Controller) writeResult(stage StageID, in Input, artifact any) error {
	if stage == StagePitch {
		switch p := artifact.(type) {
		case types.Pitch:
			return c.store.UpsertSegmentPitch(in.SegmentID, p)
		case *types.Pitch:
			return c.store.UpsertSegmentPitch(in.SegmentID, *p)
		default:
			return &InvalidArtifactError{Stage: stage, Message: "expected types.Pitch"}
		}
	}
	return c.store.Put(stage, artifact)
}

func countSuccessful(batch []types.ResearchRecord) int {
	n := 0
	for _, rec := range batch {
		if !rec.Failed() {
			n++
		}
	}
	return n
}

// firstPitchedSegment returns the first segment in plan order that has a pitch entry.
func firstPitchedSegment(plan *types.SegmentPlan, pitches map[string]types.Pitch) *types.Segment {
	for i := range plan.Segments {
		if _, ok := pitches[plan.Segments[i].ID]; ok {
			return &plan.Segments[i]
		}
	}
	return nil
}

// EditSegment applies a user edit to one segment. Edits never invalidate pitches
// already generated for that segment; whether regeneration is desired is the
// caller's concern.
func (c *Controller) EditSegment(index int, patch types.SegmentPatch) error {
	return c.store.PatchSegment(index, patch)
}

// GetArtifact returns the stage's artifact and whether one is present.
func (c *Controller) GetArtifact(stage StageID) (any, bool) {
	return c.store.Get(stage)
}

// Reset returns the pipeline to its initial state: every artifact cleared, completed
// set emptied, current stage describe.
func (c *Controller) Reset() {
	c.store.Reset()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = StageDescribe
	c.completed = make(map[StageID]bool)
}

func (c *Controller) emit(event ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(event)
	}
}

func asExecutionFailure(stage StageID, err error) *ExecutionFailedError {
	var failure *ExecutionFailedError
	if errors.As(err, &failure) {
		return failure
	}
	return &ExecutionFailedError{Stage: stage, Message: err.Error(), Cause: err}
}
