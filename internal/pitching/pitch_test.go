package pitching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/types"
)

type fakeClient struct {
	response string
	err      error
	prompt   string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func testSegment() *types.Segment {
	return &types.Segment{
		ID:             "seg-ops",
		Name:           "Ops leads",
		MessagingAngle: "lead with time savings",
		Priority:       types.PriorityHigh,
	}
}

func testEssence() *types.Essence {
	return &types.Essence{
		ValuePropositions: []string{"cuts onboarding time in half"},
		CallToAction:      "book a demo",
	}
}

const validPitchJSON = `{
	"pitch_angle": "efficiency",
	"key_messages": ["halve onboarding time"],
	"subject_lines": ["quick question about onboarding"],
	"body_template": "Hi {{first_name}}, noticed {{company_info}}.",
	"follow_up_templates": [
		{"delay_days": 3, "subject": "following up", "body": "Any thoughts?"}
	],
	"personalization_variables": ["first_name", "company_info"]
}`

func TestGenerate(t *testing.T) {
	client := &fakeClient{response: validPitchJSON}

	pitch, err := Generate(context.Background(), client, testSegment(), testEssence(), nil)
	require.NoError(t, err)

	assert.Equal(t, "efficiency", pitch.PitchAngle)
	require.Len(t, pitch.SubjectLines, 1)
	assert.Contains(t, pitch.BodyTemplate, "{{first_name}}")
	require.Len(t, pitch.FollowUpTemplates, 1)
	assert.Equal(t, 3, pitch.FollowUpTemplates[0].DelayDays)

	assert.Contains(t, client.prompt, "Ops leads")
	assert.Contains(t, client.prompt, "book a demo")
}

func TestGenerateRequiresSegment(t *testing.T) {
	client := &fakeClient{response: validPitchJSON}

	var validation *ValidationError
	_, err := Generate(context.Background(), client, nil, testEssence(), nil)
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "segment", validation.Field)
}

func TestGenerateRequiresEssence(t *testing.T) {
	client := &fakeClient{response: validPitchJSON}

	var validation *ValidationError
	_, err := Generate(context.Background(), client, testSegment(), nil, nil)
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "essence", validation.Field)
}

func TestGenerateAPIError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}

	var apiErr *APICallError
	_, err := Generate(context.Background(), client, testSegment(), testEssence(), nil)
	require.ErrorAs(t, err, &apiErr)
}

func TestGenerateRejectsSchemaViolation(t *testing.T) {
	client := &fakeClient{response: `{
		"pitch_angle": "x",
		"key_messages": [],
		"subject_lines": [],
		"body_template": "body"
	}`}

	var parseErr *ParseError
	_, err := Generate(context.Background(), client, testSegment(), testEssence(), nil)
	require.ErrorAs(t, err, &parseErr)
}

func TestGenerateDropsEmptySubjectLines(t *testing.T) {
	client := &fakeClient{response: `{
		"pitch_angle": "x",
		"key_messages": ["m", "  "],
		"subject_lines": ["  real subject  ", "   "],
		"body_template": "body"
	}`}

	pitch, err := Generate(context.Background(), client, testSegment(), testEssence(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"real subject"}, pitch.SubjectLines)
	assert.Equal(t, []string{"m"}, pitch.KeyMessages)
}

func TestSampleRecords(t *testing.T) {
	batch := []types.ResearchRecord{
		{ProspectID: "p-1"},
		{ProspectID: "p-2", Error: "timeout"},
		{ProspectID: "p-3"},
		{ProspectID: "p-4"},
	}

	sample := SampleRecords(batch, 2)
	require.Len(t, sample, 2)
	assert.Equal(t, "p-1", sample[0].ProspectID)
	assert.Equal(t, "p-3", sample[1].ProspectID)

	assert.Len(t, SampleRecords(batch, 10), 3)
	assert.Empty(t, SampleRecords(nil, 5))
}

func TestGenerateSamplesOnlySuccessfulRecords(t *testing.T) {
	client := &fakeClient{response: validPitchJSON}
	batch := []types.ResearchRecord{
		{ProspectID: "p-1", Findings: &types.ResearchFindings{CompanyInfo: "Acme"}},
		{ProspectID: "p-2", Error: "timeout"},
	}

	_, err := Generate(context.Background(), client, testSegment(), testEssence(), batch)
	require.NoError(t, err)
	assert.Contains(t, client.prompt, "p-1")
	assert.NotContains(t, client.prompt, "p-2")
}
