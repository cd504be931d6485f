package pitching

import (
	"context"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/llm"
)

// Executor adapts Generate to the pipeline's stage executor contract. The controller
// upserts the returned pitch under the input's segment id.
type Executor struct {
	Client llm.Client
}

// Stage identifies the pitch stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StagePitch
}

// Execute generates a pitch for the input's segment.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	return Generate(ctx, e.Client, in.Segment, in.Essence, in.Research)
}
