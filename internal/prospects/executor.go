package prospects

import (
	"context"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/types"
)

// Executor implements the select_audience stage: it resolves the caller's list
// reference through the provider and records the selection.
type Executor struct {
	Provider Provider
}

// Stage identifies the select_audience stage.
func (e *Executor) Stage() campaign.StageID {
	return campaign.StageSelectAudience
}

// Execute resolves the list reference. The selection stays an opaque pointer; the
// pipeline never owns the list's contents.
func (e *Executor) Execute(ctx context.Context, in campaign.Input) (any, error) {
	list, err := e.Provider.GetList(ctx, in.ListID)
	if err != nil {
		return nil, err
	}
	return &types.AudienceSelection{
		ListID:        list.ID,
		Name:          list.Name,
		ProspectCount: len(list.Prospects),
	}, nil
}
