package segmenting

import (
	"context"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/llm"
)

// Executor adapts Segment to the pipeline's stage executor contract.
type Executor struct {
	Client llm.Client
}

// Stage identifies the segment stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StageSegment
}

// Execute groups the research batch into segments.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	return Segment(ctx, e.Client, in.Research, in.Goals, in.Essence)
}
