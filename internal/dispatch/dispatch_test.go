package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/delivery"
	"github.com/jonathan/campaign-composer/internal/types"
)

// fakeEngine records the delivery request and returns a canned receipt.
type fakeEngine struct {
	req     *delivery.Request
	receipt *delivery.Receipt
	err     error
}

func (f *fakeEngine) Deliver(_ context.Context, req delivery.Request) (*delivery.Receipt, error) {
	f.req = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func testInput() campaign.Input {
	return campaign.Input{
		Audience: &types.AudienceSelection{ListID: "list-1"},
		Research: []types.ResearchRecord{
			{
				ProspectID:    "p-1",
				ProspectEmail: "ana@acme.test",
				Findings:      &types.ResearchFindings{CompanyInfo: "Acme builds widgets"},
			},
			{ProspectID: "p-2", ProspectEmail: "bo@initech.test", Error: "fetch timeout"},
		},
		Segment: &types.Segment{ID: "seg-a", Name: "Ops leads", Priority: types.PriorityHigh},
		Pitches: map[string]types.Pitch{
			"seg-a": {
				SubjectLines: []string{"quick question"},
				BodyTemplate: "Hi {{first_name}}, noticed {{company_info}}.",
			},
		},
	}
}

func TestExecuteDispatches(t *testing.T) {
	engine := &fakeEngine{receipt: &delivery.Receipt{Confirmation: "batch accepted", Accepted: 1}}
	ex := NewExecutor(engine)
	fixed := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	ex.now = func() time.Time { return fixed }

	artifact, err := ex.Execute(context.Background(), testInput())
	require.NoError(t, err)

	receipt := artifact.(*types.DispatchReceipt)
	require.Len(t, receipt.Emails, 1, "failed research records are skipped")
	assert.Equal(t, "p-1", receipt.Emails[0].ProspectID)
	assert.Equal(t, "Hi Ana, noticed Acme builds widgets.", receipt.Emails[0].Body)
	assert.Equal(t, "seg-a", receipt.SegmentID)
	assert.Equal(t, "list-1", receipt.ListID)
	assert.Equal(t, "batch accepted", receipt.Confirmation)
	assert.Equal(t, fixed, receipt.DispatchedAt)

	require.NotNil(t, engine.req)
	assert.Equal(t, "list-1", engine.req.ListID)
	assert.Len(t, engine.req.Emails, 1)
}

func TestExecuteStage(t *testing.T) {
	ex := NewExecutor(&fakeEngine{})
	assert.Equal(t, campaign.StageDispatch, ex.Stage())
}

func TestExecuteNoPitch(t *testing.T) {
	engine := &fakeEngine{receipt: &delivery.Receipt{}}
	ex := NewExecutor(engine)
	in := testInput()
	in.Pitches = nil

	var dispatchErr *Error
	_, err := ex.Execute(context.Background(), in)
	require.ErrorAs(t, err, &dispatchErr)
	assert.Nil(t, engine.req, "delivery must not be called without a pitch")
}

func TestExecuteFallsBackWhenSegmentUnpitched(t *testing.T) {
	engine := &fakeEngine{receipt: &delivery.Receipt{Confirmation: "ok"}}
	ex := NewExecutor(engine)
	in := testInput()
	in.Segment = &types.Segment{ID: "seg-z", Name: "Other"}

	artifact, err := ex.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "seg-a", artifact.(*types.DispatchReceipt).SegmentID)
}

func TestExecuteAllRecordsFailed(t *testing.T) {
	engine := &fakeEngine{receipt: &delivery.Receipt{}}
	ex := NewExecutor(engine)
	in := testInput()
	in.Research = []types.ResearchRecord{{ProspectID: "p-1", Error: "timeout"}}

	var dispatchErr *Error
	_, err := ex.Execute(context.Background(), in)
	require.ErrorAs(t, err, &dispatchErr)
	assert.Nil(t, engine.req)
}

func TestExecuteDeliveryErrorPropagates(t *testing.T) {
	cause := &delivery.Error{Message: "delivery service returned 503"}
	engine := &fakeEngine{err: cause}
	ex := NewExecutor(engine)

	_, err := ex.Execute(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))

	var deliveryErr *delivery.Error
	assert.ErrorAs(t, err, &deliveryErr)
}

func TestExecuteMissingAudience(t *testing.T) {
	engine := &fakeEngine{receipt: &delivery.Receipt{Confirmation: "ok"}}
	ex := NewExecutor(engine)
	in := testInput()
	in.Audience = nil

	artifact, err := ex.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, artifact.(*types.DispatchReceipt).ListID)
}
