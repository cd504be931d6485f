// Package dispatch implements the final pipeline stage: personalize the chosen pitch
// across the research batch and hand the resulting emails to the delivery engine.
package dispatch

import (
	"context"
	"time"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/delivery"
	"github.com/jonathan/campaign-composer/internal/personalizing"
	"github.com/jonathan/campaign-composer/internal/types"
)

// Executor implements the dispatch stage.
type Executor struct {
	Engine delivery.Engine
	// now is swappable for tests.
	now func() time.Time
}

// NewExecutor creates the dispatch executor.
func NewExecutor(engine delivery.Engine) *Executor {
	return &Executor{Engine: engine, now: time.Now}
}

// Stage identifies the dispatch stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StageDispatch
}

// Execute applies one pitch across the audience and delivers the batch. When several
// pitches exist the first pitched segment in plan order wins; the receipt records
// which segment's pitch was applied.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	segmentID, pitch, err := choosePitch(in)
	if err != nil {
		return nil, err
	}

	emails := personalizing.Apply(pitch, in.Research)
	if len(emails) == 0 {
		return nil, &Error{Message: "no successful research records to personalize"}
	}

	listID := ""
	if in.Audience != nil {
		listID = in.Audience.ListID
	}

	receipt, err := e.Engine.Deliver(ctx, delivery.Request{ListID: listID, Emails: emails})
	if err != nil {
		return nil, err
	}

	now := e.now
	if now == nil {
		now = time.Now
	}
	return &types.DispatchReceipt{
		Emails:       emails,
		SegmentID:    segmentID,
		ListID:       listID,
		Confirmation: receipt.Confirmation,
		DispatchedAt: now(),
	}, nil
}

// choosePitch selects the pitch to apply. The controller resolves the first pitched
// segment in plan order into in.Segment; without a plan any available entry serves.
func choosePitch(in campaign.Input) (string, types.Pitch, error) {
	if in.Segment != nil {
		if pitch, ok := in.Pitches[in.Segment.ID]; ok {
			return in.Segment.ID, pitch, nil
		}
	}
	for id, pitch := range in.Pitches {
		return id, pitch, nil
	}
	return "", types.Pitch{}, &Error{Message: "no pitch available to dispatch"}
}

// Error represents a dispatch failure before or after the delivery call.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "dispatch failed: " + e.Message
}
