package essence

import (
	"context"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/llm"
)

// Executor adapts Extract to the pipeline's stage executor contract.
type Executor struct {
	Client llm.Client
}

// Stage identifies the describe stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StageDescribe
}

// Execute extracts the campaign essence from the input description.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	return Extract(ctx, e.Client, in.Description, in.AudienceHint)
}
