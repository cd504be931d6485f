package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/campaign-composer/internal/types"
)

func testEssence() *types.Essence {
	return &types.Essence{
		ValuePropositions: []string{"cuts onboarding time in half"},
		CallToAction:      "book a demo",
		Tone:              "direct",
	}
}

func testAudience() *types.AudienceSelection {
	return &types.AudienceSelection{ListID: "list-1", Name: "Q3 prospects", ProspectCount: 3}
}

func testResearch() []types.ResearchRecord {
	return []types.ResearchRecord{
		{
			ProspectID:    "p-1",
			ProspectEmail: "ana@acme.test",
			Findings:      &types.ResearchFindings{CompanyInfo: "Acme builds widgets"},
		},
		{ProspectID: "p-2", ProspectEmail: "bo@initech.test", Error: "fetch timeout"},
	}
}

func testPlan() *types.SegmentPlan {
	return &types.SegmentPlan{
		Segments: []types.Segment{
			{ID: "seg-a", Name: "Ops leads", Priority: types.PriorityHigh, SizeEstimatePct: 60},
			{ID: "seg-b", Name: "Founders", Priority: types.PriorityMedium, SizeEstimatePct: 30},
		},
		Strategy:     "by role",
		UnmatchedPct: 10,
	}
}

func testPitch(angle string) types.Pitch {
	return types.Pitch{
		PitchAngle:   angle,
		SubjectLines: []string{"quick question"},
		BodyTemplate: "Hi {{first_name}}, saw that {{company_info}}.",
	}
}

func testReceipt() *types.DispatchReceipt {
	return &types.DispatchReceipt{
		Emails: []types.PersonalizedEmail{{
			ProspectID:    "p-1",
			ProspectEmail: "ana@acme.test",
			Subject:       "quick question",
			Body:          "Hi Ana, saw that Acme builds widgets.",
		}},
		SegmentID:    "seg-a",
		ListID:       "list-1",
		Confirmation: "accepted",
	}
}

func TestStoreEmptyHasNoArtifacts(t *testing.T) {
	store := NewStore()
	for _, info := range Stages() {
		_, ok := store.Get(info.ID)
		assert.False(t, ok, "stage %s should start empty", info.ID)
		_, ok = store.UpdatedAt(info.ID)
		assert.False(t, ok)
	}
}

func TestStorePutAndGetRoundTrip(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.Put(StageDescribe, testEssence()))
	require.NoError(t, store.Put(StageSelectAudience, testAudience()))
	require.NoError(t, store.Put(StageResearch, testResearch()))
	require.NoError(t, store.Put(StageSegment, testPlan()))
	require.NoError(t, store.Put(StageDispatch, testReceipt()))

	essence, ok := store.Get(StageDescribe)
	require.True(t, ok)
	assert.Equal(t, "book a demo", essence.(*types.Essence).CallToAction)

	batch, ok := store.Get(StageResearch)
	require.True(t, ok)
	assert.Len(t, batch.([]types.ResearchRecord), 2)

	plan, ok := store.Get(StageSegment)
	require.True(t, ok)
	assert.Len(t, plan.(*types.SegmentPlan).Segments, 2)
}

func TestStorePutRejectsWrongType(t *testing.T) {
	store := NewStore()

	var invalid *InvalidArtifactError
	err := store.Put(StageDescribe, "not an essence")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StageDescribe, invalid.Stage)
}

func TestStorePutRejectsShapeViolation(t *testing.T) {
	store := NewStore()

	// Essence without value propositions fails validation.
	err := store.Put(StageDescribe, &types.Essence{Tone: "direct"})
	var invalid *InvalidArtifactError
	require.ErrorAs(t, err, &invalid)

	_, ok := store.Get(StageDescribe)
	assert.False(t, ok, "failed write must leave the store empty")
}

func TestStorePutFailureLeavesPriorArtifact(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageDescribe, testEssence()))

	err := store.Put(StageDescribe, &types.Essence{})
	require.Error(t, err)

	got, ok := store.Get(StageDescribe)
	require.True(t, ok)
	assert.Equal(t, "book a demo", got.(*types.Essence).CallToAction)
}

func TestStorePutRejectsDuplicateSegmentIDs(t *testing.T) {
	store := NewStore()
	plan := testPlan()
	plan.Segments[1].ID = plan.Segments[0].ID

	err := store.Put(StageSegment, plan)
	var invalid *InvalidArtifactError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StageSegment, invalid.Stage)
}

func TestStorePutUnknownStage(t *testing.T) {
	store := NewStore()
	var unknown *UnknownStageError
	err := store.Put(StageID("bogus"), testEssence())
	require.ErrorAs(t, err, &unknown)
}

func TestStoreGetReturnsCopies(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	got, ok := store.Get(StageSegment)
	require.True(t, ok)
	got.(*types.SegmentPlan).Segments[0].Name = "mutated"

	fresh := store.SegmentPlan()
	assert.Equal(t, "Ops leads", fresh.Segments[0].Name)
}

func TestStoreCopiesDoNotAliasInnerSlices(t *testing.T) {
	store := NewStore()

	plan := testPlan()
	plan.Segments[0].PainPoints = []string{"manual onboarding"}
	plan.Segments[0].Criteria.Roles = []string{"VP Ops"}
	require.NoError(t, store.Put(StageSegment, plan))
	require.NoError(t, store.Put(StageResearch, testResearch()))
	require.NoError(t, store.UpsertSegmentPitch("seg-a", testPitch("roi")))

	// Mutating a returned plan through its nested slices must not reach the store.
	got := store.SegmentPlan()
	got.Segments[0].PainPoints[0] = "mutated"
	got.Segments[0].Criteria.Roles[0] = "mutated"
	fresh := store.SegmentPlan()
	assert.Equal(t, "manual onboarding", fresh.Segments[0].PainPoints[0])
	assert.Equal(t, "VP Ops", fresh.Segments[0].Criteria.Roles[0])

	// Research records share Findings by pointer unless the store copies them.
	batch := store.Research()
	batch[0].Findings.CompanyInfo = "mutated"
	assert.Equal(t, "Acme builds widgets", store.Research()[0].Findings.CompanyInfo)

	// Same for pitch slice fields.
	pitches := store.Pitches()
	pitches["seg-a"].SubjectLines[0] = "mutated"
	assert.Equal(t, "quick question", store.Pitches()["seg-a"].SubjectLines[0])
}

func TestStorePutCopiesCallerArtifact(t *testing.T) {
	store := NewStore()

	batch := testResearch()
	require.NoError(t, store.Put(StageResearch, batch))

	// A caller reusing its batch after Put must not rewrite stored findings.
	batch[0].Findings.CompanyInfo = "mutated"
	assert.Equal(t, "Acme builds widgets", store.Research()[0].Findings.CompanyInfo)
}

func TestStoreUpsertSegmentPitch(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	require.NoError(t, store.UpsertSegmentPitch("seg-a", testPitch("efficiency")))
	require.NoError(t, store.UpsertSegmentPitch("seg-b", testPitch("growth")))

	// Overwrite seg-a; seg-b must be untouched.
	require.NoError(t, store.UpsertSegmentPitch("seg-a", testPitch("cost savings")))

	pitches := store.Pitches()
	require.Len(t, pitches, 2)
	assert.Equal(t, "cost savings", pitches["seg-a"].PitchAngle)
	assert.Equal(t, "growth", pitches["seg-b"].PitchAngle)
}

func TestStoreUpsertPitchUnknownSegment(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	var unknown *UnknownSegmentError
	err := store.UpsertSegmentPitch("seg-z", testPitch("x"))
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "seg-z", unknown.SegmentID)
}

func TestStoreUpsertPitchWithoutPlan(t *testing.T) {
	store := NewStore()
	var unknown *UnknownSegmentError
	err := store.UpsertSegmentPitch("seg-a", testPitch("x"))
	require.ErrorAs(t, err, &unknown)
}

func TestStoreUpsertPitchShapeViolation(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	// Missing subject lines and body template.
	err := store.UpsertSegmentPitch("seg-a", types.Pitch{PitchAngle: "x"})
	var invalid *InvalidArtifactError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, store.Pitches())
}

func TestStorePatchSegment(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	name := "Operations leaders"
	angle := "lead with the audit trail"
	require.NoError(t, store.PatchSegment(0, types.SegmentPatch{Name: &name, MessagingAngle: &angle}))

	plan := store.SegmentPlan()
	require.Len(t, plan.Segments, 2)
	assert.Equal(t, "seg-a", plan.Segments[0].ID, "patch must preserve the segment id")
	assert.Equal(t, name, plan.Segments[0].Name)
	assert.Equal(t, angle, plan.Segments[0].MessagingAngle)
	assert.Equal(t, "Founders", plan.Segments[1].Name, "unrelated segment untouched")
}

func TestStorePatchSegmentNilFieldsLeaveUnchanged(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	require.NoError(t, store.PatchSegment(1, types.SegmentPatch{}))
	assert.Equal(t, "Founders", store.SegmentPlan().Segments[1].Name)
}

func TestStorePatchSegmentRejectsEmptyName(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	empty := ""
	err := store.PatchSegment(0, types.SegmentPatch{Name: &empty})
	var invalid *InvalidArtifactError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Ops leads", store.SegmentPlan().Segments[0].Name)
}

func TestStorePatchSegmentOutOfRange(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageSegment, testPlan()))

	var oor *IndexOutOfRangeError
	err := store.PatchSegment(5, types.SegmentPatch{})
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 5, oor.Index)
	assert.Equal(t, 2, oor.Length)

	err = store.PatchSegment(-1, types.SegmentPatch{})
	require.ErrorAs(t, err, &oor)
}

func TestStorePatchSegmentWithoutPlan(t *testing.T) {
	store := NewStore()
	var oor *IndexOutOfRangeError
	err := store.PatchSegment(0, types.SegmentPatch{})
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 0, oor.Length)
}

func TestStoreUpdatedAtTracksWrites(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageDescribe, testEssence()))

	first, ok := store.UpdatedAt(StageDescribe)
	require.True(t, ok)

	require.NoError(t, store.Put(StageDescribe, testEssence()))
	second, ok := store.UpdatedAt(StageDescribe)
	require.True(t, ok)
	assert.False(t, second.Before(first))
}

func TestStoreReset(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(StageDescribe, testEssence()))
	require.NoError(t, store.Put(StageSegment, testPlan()))
	require.NoError(t, store.UpsertSegmentPitch("seg-a", testPitch("x")))

	store.Reset()

	for _, info := range Stages() {
		_, ok := store.Get(info.ID)
		assert.False(t, ok, "stage %s should be cleared", info.ID)
	}
	assert.Nil(t, store.Essence())
	assert.Empty(t, store.Pitches())
}
