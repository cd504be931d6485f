package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/campaign-composer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintEssence(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	essence := &types.Essence{
		ValuePropositions: []string{"Cuts onboarding time in half", "No-code setup"},
		PainPoints:        []string{"Manual data entry"},
		Tone:              "confident",
		TargetPersona:     "ops managers",
	}

	p.PrintEssence(essence)
	output := buf.String()

	assert.Contains(t, output, "CAMPAIGN ESSENCE")
	assert.Contains(t, output, "confident")
	assert.Contains(t, output, "ops managers")
	assert.Contains(t, output, "Cuts onboarding time in half")
	assert.Contains(t, output, "Manual data entry")
}

func TestPrintEssence_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEssence(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAudience(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAudience(&types.AudienceSelection{
		ListID:        "list-1",
		Name:          "Q3 SaaS leads",
		ProspectCount: 42,
	})
	output := buf.String()

	assert.Contains(t, output, "SELECTED AUDIENCE")
	assert.Contains(t, output, "Q3 SaaS leads")
	assert.Contains(t, output, "42")
}

func TestPrintResearchBatch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	batch := []types.ResearchRecord{
		{
			ProspectID: "p1",
			Findings: &types.ResearchFindings{
				PersonalizationHooks: []string{"Recently raised Series B"},
			},
		},
		{
			ProspectID: "p2",
			Error:      "site unreachable",
		},
	}

	p.PrintResearchBatch(batch)
	output := buf.String()

	assert.Contains(t, output, "PROSPECT RESEARCH")
	assert.Contains(t, output, "1 ok, 1 failed")
	assert.Contains(t, output, "✓ p1")
	assert.Contains(t, output, "✗ p2")
	assert.Contains(t, output, "site unreachable")
}

func TestPrintResearchBatch_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResearchBatch(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSegmentPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &types.SegmentPlan{
		Segments: []types.Segment{
			{
				ID:              "seg_1",
				Name:            "Growth-stage startups",
				SizeEstimatePct: 60,
				Priority:        types.PriorityHigh,
				MessagingAngle:  "speed to value",
			},
		},
		UnmatchedPct: 10,
	}

	p.PrintSegmentPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "SEGMENT PLAN")
	assert.Contains(t, output, "Growth-stage startups")
	assert.Contains(t, output, "seg_1")
	assert.Contains(t, output, "60% of list, priority high")
	assert.Contains(t, output, "Unmatched: 10%")
	assert.Contains(t, output, "speed to value")
}

func TestPrintPitch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	pitch := &types.Pitch{
		PitchAngle:   "automation without headcount",
		SubjectLines: []string{"Stop copying spreadsheets", "Your ops team deserves better"},
		BodyTemplate: "Hi {{first_name}},",
		FollowUpTemplates: []types.FollowUp{
			{DelayDays: 3, Subject: "Quick follow-up", Body: "Just checking in"},
		},
	}

	p.PrintPitch("seg_1", pitch)
	output := buf.String()

	assert.Contains(t, output, "GENERATED PITCH")
	assert.Contains(t, output, "seg_1")
	assert.Contains(t, output, "automation without headcount")
	assert.Contains(t, output, "Stop copying spreadsheets")
	assert.Contains(t, output, "Follow-ups: 1")
}

func TestPrintDispatchReceipt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	receipt := &types.DispatchReceipt{
		Emails: []types.PersonalizedEmail{
			{
				ProspectID:    "p1",
				ProspectEmail: "jane@acme.com",
				Subject:       "Stop copying spreadsheets",
				Body:          "Hi Jane,",
			},
		},
		SegmentID:    "seg_1",
		Confirmation: "accepted 1 emails",
	}

	p.PrintDispatchReceipt(receipt)
	output := buf.String()

	assert.Contains(t, output, "DISPATCH RECEIPT")
	assert.Contains(t, output, "jane@acme.com")
	assert.Contains(t, output, "seg_1")
	assert.Contains(t, output, "accepted 1 emails")
}

func TestPrintDispatchReceipt_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDispatchReceipt(nil)

	assert.Contains(t, buf.String(), "NO EMAILS DISPATCHED")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	essence := &types.Essence{
		ValuePropositions: []string{"A very long value proposition that should be truncated to fit inside the box"},
		Tone:              "an extremely verbose tone description that overruns the box width for sure",
	}

	p.PrintEssence(essence)
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
