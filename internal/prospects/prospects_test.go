package prospects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/types"
)

func testList() *List {
	return &List{
		ID:   "list-1",
		Name: "Q3 prospects",
		Prospects: []Prospect{
			{ID: "p-1", Email: "ana@acme.test"},
			{ID: "p-2", Email: "bo@initech.test"},
		},
	}
}

func TestStaticProviderGetList(t *testing.T) {
	provider := NewStaticProvider(testList())

	list, err := provider.GetList(context.Background(), "list-1")
	require.NoError(t, err)
	assert.Equal(t, "Q3 prospects", list.Name)
	assert.Len(t, list.Prospects, 2)
}

func TestStaticProviderUnknownList(t *testing.T) {
	provider := NewStaticProvider(testList())

	var notFound *ListNotFoundError
	_, err := provider.GetList(context.Background(), "missing")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ListID)
}

func TestExecutorRecordsSelection(t *testing.T) {
	ex := &Executor{Provider: NewStaticProvider(testList())}

	assert.Equal(t, campaign.StageSelectAudience, ex.Stage())

	artifact, err := ex.Execute(context.Background(), campaign.Input{ListID: "list-1"})
	require.NoError(t, err)

	sel := artifact.(*types.AudienceSelection)
	assert.Equal(t, "list-1", sel.ListID)
	assert.Equal(t, "Q3 prospects", sel.Name)
	assert.Equal(t, 2, sel.ProspectCount)
}

func TestExecutorUnknownList(t *testing.T) {
	ex := &Executor{Provider: NewStaticProvider()}

	var notFound *ListNotFoundError
	_, err := ex.Execute(context.Background(), campaign.Input{ListID: "missing"})
	require.ErrorAs(t, err, &notFound)
}
