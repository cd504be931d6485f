package campaign

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/campaign-composer/internal/types"
)

// Store holds each stage's artifact for one pipeline instance. Artifacts start empty,
// are written by full replace per successful stage invocation (targeted upsert for
// per-segment pitches), and are cleared only by Reset.
//
// All writes are serialized on an internal mutex, so concurrent pitch upserts for the
// same segment resolve last-writer-wins with no merging.
type Store struct {
	mu        sync.Mutex
	essence   *types.Essence
	audience  *types.AudienceSelection
	research  []types.ResearchRecord
	plan      *types.SegmentPlan
	pitches   map[string]types.Pitch
	dispatch  *types.DispatchReceipt
	updatedAt map[StageID]time.Time
	validate  *validator.Validate
}

// NewStore creates an empty artifact store.
func NewStore() *Store {
	return &Store{
		pitches:   make(map[string]types.Pitch),
		updatedAt: make(map[StageID]time.Time),
		validate:  validator.New(),
	}
}

// Get returns the stage's artifact and whether one is present. It never fails;
// an unknown stage simply has no artifact.
func (s *Store) Get(stage StageID) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch stage {
	case StageDescribe:
		if s.essence == nil {
			return nil, false
		}
		return s.essence.Clone(), true
	case StageSelectAudience:
		if s.audience == nil {
			return nil, false
		}
		cp := *s.audience
		return &cp, true
	case StageResearch:
		if s.research == nil {
			return nil, false
		}
		return types.CloneResearchBatch(s.research), true
	case StageSegment:
		if s.plan == nil {
			return nil, false
		}
		return s.plan.Clone(), true
	case StagePitch:
		if len(s.pitches) == 0 {
			return nil, false
		}
		return s.copyPitchesLocked(), true
	case StageDispatch:
		if s.dispatch == nil {
			return nil, false
		}
		return s.dispatch.Clone(), true
	}
	return nil, false
}

// Put replaces the stage's artifact wholesale. The value's shape is validated against
// the stage's expected type; a mismatch fails with InvalidArtifactError and leaves the
// prior artifact untouched.
func (s *Store) Put(stage StageID, artifact any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch stage {
	case StageDescribe:
		essence, ok := artifact.(*types.Essence)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected *types.Essence"}
		}
		if err := s.validate.Struct(essence); err != nil {
			return &InvalidArtifactError{Stage: stage, Message: "shape validation failed", Cause: err}
		}
		s.essence = essence.Clone()

	case StageSelectAudience:
		sel, ok := artifact.(*types.AudienceSelection)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected *types.AudienceSelection"}
		}
		if err := s.validate.Struct(sel); err != nil {
			return &InvalidArtifactError{Stage: stage, Message: "shape validation failed", Cause: err}
		}
		cp := *sel
		s.audience = &cp

	case StageResearch:
		batch, ok := artifact.([]types.ResearchRecord)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected []types.ResearchRecord"}
		}
		for i := range batch {
			if err := s.validate.Struct(&batch[i]); err != nil {
				return &InvalidArtifactError{Stage: stage, Message: "shape validation failed", Cause: err}
			}
		}
		s.research = types.CloneResearchBatch(batch)

	case StageSegment:
		plan, ok := artifact.(*types.SegmentPlan)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected *types.SegmentPlan"}
		}
		if err := s.validate.Struct(plan); err != nil {
			return &InvalidArtifactError{Stage: stage, Message: "shape validation failed", Cause: err}
		}
		if err := plan.CheckUniqueIDs(); err != nil {
			return &InvalidArtifactError{Stage: stage, Message: "segment ids must be unique", Cause: err}
		}
		s.plan = plan.Clone()

	case StagePitch:
		pitches, ok := artifact.(map[string]types.Pitch)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected map[string]types.Pitch"}
		}
		replacement := make(map[string]types.Pitch, len(pitches))
		for id, p := range pitches {
			if err := s.validatePitchLocked(id, p); err != nil {
				return err
			}
			replacement[id] = p.Clone()
		}
		s.pitches = replacement

	case StageDispatch:
		receipt, ok := artifact.(*types.DispatchReceipt)
		if !ok {
			return &InvalidArtifactError{Stage: stage, Message: "expected *types.DispatchReceipt"}
		}
		if err := s.validate.Struct(receipt); err != nil {
			return &InvalidArtifactError{Stage: stage, Message: "shape validation failed", Cause: err}
		}
		s.dispatch = receipt.Clone()

	default:
		return &UnknownStageError{Stage: stage}
	}

	s.updatedAt[stage] = time.Now()
	return nil
}

// UpsertSegmentPitch merges one pitch into the pitch stage's mapping. Fails with
// UnknownSegmentError if the segment id does not exist in the current segment plan.
// Unrelated segments' pitches are never touched; repeat upserts for the same segment
// are last-writer-wins.
func (s *Store) UpsertSegmentPitch(segmentID string, pitch types.Pitch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil || s.plan.FindSegment(segmentID) == nil {
		return &UnknownSegmentError{SegmentID: segmentID}
	}
	if err := s.validatePitchLocked(segmentID, pitch); err != nil {
		return err
	}
	s.pitches[segmentID] = pitch.Clone()
	s.updatedAt[StagePitch] = time.Now()
	return nil
}

// PatchSegment applies a user edit to one segment in place. Only Name and
// MessagingAngle can change; the segment id and the plan length are preserved.
// A patched segment never invalidates a pitch already generated for it.
func (s *Store) PatchSegment(index int, patch types.SegmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return &IndexOutOfRangeError{Index: index, Length: 0}
	}
	if index < 0 || index >= len(s.plan.Segments) {
		return &IndexOutOfRangeError{Index: index, Length: len(s.plan.Segments)}
	}
	seg := &s.plan.Segments[index]
	if patch.Name != nil {
		if *patch.Name == "" {
			return &InvalidArtifactError{Stage: StageSegment, Message: "segment name cannot be empty"}
		}
		seg.Name = *patch.Name
	}
	if patch.MessagingAngle != nil {
		seg.MessagingAngle = *patch.MessagingAngle
	}
	s.updatedAt[StageSegment] = time.Now()
	return nil
}

// UpdatedAt reports when a stage's artifact was last written. Callers use this to
// surface "possibly stale" downstream artifacts after an upstream regeneration; the
// store itself never cascades invalidation.
func (s *Store) UpdatedAt(stage StageID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.updatedAt[stage]
	return t, ok
}

// Reset clears every artifact, returning the store to its pipeline-start state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.essence = nil
	s.audience = nil
	s.research = nil
	s.plan = nil
	s.pitches = make(map[string]types.Pitch)
	s.dispatch = nil
	s.updatedAt = make(map[StageID]time.Time)
}

// Essence returns the describe artifact, or nil.
func (s *Store) Essence() *types.Essence {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.essence == nil {
		return nil
	}
	return s.essence.Clone()
}

// Audience returns the select_audience artifact, or nil.
func (s *Store) Audience() *types.AudienceSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audience == nil {
		return nil
	}
	cp := *s.audience
	return &cp
}

// Research returns the research batch, or nil.
func (s *Store) Research() []types.ResearchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.research == nil {
		return nil
	}
	return types.CloneResearchBatch(s.research)
}

// SegmentPlan returns the segment artifact, or nil.
func (s *Store) SegmentPlan() *types.SegmentPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}
	return s.plan.Clone()
}

// Pitches returns the pitch mapping. The map is a copy; mutations do not reach the store.
func (s *Store) Pitches() map[string]types.Pitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyPitchesLocked()
}

// Dispatch returns the dispatch receipt, or nil.
func (s *Store) Dispatch() *types.DispatchReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatch == nil {
		return nil
	}
	return s.dispatch.Clone()
}

func (s *Store) copyPitchesLocked() map[string]types.Pitch {
	out := make(map[string]types.Pitch, len(s.pitches))
	for id, p := range s.pitches {
		out[id] = p.Clone()
	}
	return out
}

func (s *Store) validatePitchLocked(segmentID string, pitch types.Pitch) error {
	if err := s.validate.Struct(&pitch); err != nil {
		return &InvalidArtifactError{
			Stage:   StagePitch,
			Message: "shape validation failed for segment " + segmentID,
			Cause:   err,
		}
	}
	return nil
}
