// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/campaign-composer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEssence outputs a human-readable summary of the extracted campaign essence.
func (p *Printer) PrintEssence(essence *types.Essence) {
	if essence == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Tone:     %s\n", essence.Tone))
	if essence.TargetPersona != "" {
		sb.WriteString(fmt.Sprintf("Persona:  %s\n", essence.TargetPersona))
	}
	sb.WriteString("\n")

	if len(essence.ValuePropositions) > 0 {
		sb.WriteString("Value Propositions:\n")
		count := min(len(essence.ValuePropositions), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", essence.ValuePropositions[i]))
		}
		if len(essence.ValuePropositions) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(essence.ValuePropositions)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(essence.PainPoints) > 0 {
		sb.WriteString("Pain Points:\n")
		count := min(len(essence.PainPoints), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", essence.PainPoints[i]))
		}
		if len(essence.PainPoints) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(essence.PainPoints)-3))
		}
	}

	p.printBox("CAMPAIGN ESSENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAudience outputs the selected prospect list summary.
func (p *Printer) PrintAudience(audience *types.AudienceSelection) {
	if audience == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("List:      %s\n", audience.Name))
	sb.WriteString(fmt.Sprintf("List ID:   %s\n", audience.ListID))
	sb.WriteString(fmt.Sprintf("Prospects: %d", audience.ProspectCount))

	p.printBox("SELECTED AUDIENCE", sb.String())
}

// PrintResearchBatch outputs the research results with per-prospect status.
func (p *Printer) PrintResearchBatch(batch []types.ResearchRecord) {
	if len(batch) == 0 {
		return
	}

	var sb strings.Builder
	succeeded := len(types.SuccessfulRecords(batch))
	sb.WriteString(fmt.Sprintf("Researched %d prospects (%d ok, %d failed):\n\n",
		len(batch), succeeded, len(batch)-succeeded))

	count := min(len(batch), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := batch[i]
		if rec.Failed() {
			sb.WriteString(fmt.Sprintf("✗ %s\n", rec.ProspectID))
			detail := rec.Error
			if len(detail) > 45 {
				detail = detail[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", detail))
		} else {
			sb.WriteString(fmt.Sprintf("✓ %s\n", rec.ProspectID))
			if rec.Findings != nil && len(rec.Findings.PersonalizationHooks) > 0 {
				hook := rec.Findings.PersonalizationHooks[0]
				if len(hook) > 45 {
					hook = hook[:42] + "..."
				}
				sb.WriteString(fmt.Sprintf("  Hook: %s\n", hook))
			}
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(batch) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more prospects", len(batch)-maxItemsToShow))
	}

	p.printBox("PROSPECT RESEARCH", sb.String())
}

// PrintSegmentPlan outputs the segment plan with sizes and priorities.
func (p *Printer) PrintSegmentPlan(plan *types.SegmentPlan) {
	if plan == nil || len(plan.Segments) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Segments: %d\n", len(plan.Segments)))
	if plan.UnmatchedPct > 0 {
		sb.WriteString(fmt.Sprintf("Unmatched: %d%%\n", plan.UnmatchedPct))
	}
	sb.WriteString("\n")

	count := min(len(plan.Segments), maxItemsToShow)
	for i := 0; i < count; i++ {
		seg := plan.Segments[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, seg.Name, seg.ID))
		sb.WriteString(fmt.Sprintf("    %d%% of list, priority %s\n", seg.SizeEstimatePct, seg.Priority))
		if seg.MessagingAngle != "" {
			angle := seg.MessagingAngle
			if len(angle) > 45 {
				angle = angle[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Angle: %s\n", angle))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(plan.Segments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more segments", len(plan.Segments)-maxItemsToShow))
	}

	p.printBox("SEGMENT PLAN", sb.String())
}

// PrintPitch outputs a generated pitch summary for a segment.
func (p *Printer) PrintPitch(segmentID string, pitch *types.Pitch) {
	if pitch == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Segment:  %s\n", segmentID))
	angle := pitch.PitchAngle
	if len(angle) > 45 {
		angle = angle[:42] + "..."
	}
	sb.WriteString(fmt.Sprintf("Angle:    %s\n", angle))
	sb.WriteString("\n")

	if len(pitch.SubjectLines) > 0 {
		sb.WriteString("Subject Lines:\n")
		count := min(len(pitch.SubjectLines), 3)
		for i := 0; i < count; i++ {
			subject := pitch.SubjectLines[i]
			if len(subject) > 50 {
				subject = subject[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", subject))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Follow-ups: %d", len(pitch.FollowUpTemplates)))

	p.printBox("GENERATED PITCH", sb.String())
}

// PrintDispatchReceipt outputs the final dispatch confirmation.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDispatchReceipt(receipt *types.DispatchReceipt) {
	if receipt == nil || len(receipt.Emails) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "⚠ NO EMAILS DISPATCHED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dispatched %d emails\n", len(receipt.Emails)))
	sb.WriteString(fmt.Sprintf("Segment:      %s\n", receipt.SegmentID))
	sb.WriteString(fmt.Sprintf("Confirmation: %s\n\n", receipt.Confirmation))

	count := min(len(receipt.Emails), maxItemsToShow)
	for i := 0; i < count; i++ {
		email := receipt.Emails[i]
		subject := email.Subject
		if len(subject) > 45 {
			subject = subject[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", email.ProspectEmail))
		sb.WriteString(fmt.Sprintf("  %s\n", subject))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(receipt.Emails) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more emails", len(receipt.Emails)-maxItemsToShow))
	}

	p.printBox("DISPATCH RECEIPT", sb.String())
}
