// Package personalizing instantiates a pitch template for each researched prospect,
// substituting placeholders with values drawn from that prospect's findings.
package personalizing

import (
	"regexp"
	"strings"

	"github.com/jonathan/campaign-composer/internal/types"
)

// placeholderPattern matches {{variable}} placeholders in pitch templates.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Apply instantiates the pitch for every successful record in the batch, one email
// per prospect, in batch order. Records carrying error markers are skipped. The first
// subject line is used; follow-ups are personalized with the same variables.
func Apply(pitch types.Pitch, batch []types.ResearchRecord) []types.PersonalizedEmail {
	var emails []types.PersonalizedEmail
	for _, record := range batch {
		if record.Failed() {
			continue
		}

		vars := Variables(record)
		subject := ""
		if len(pitch.SubjectLines) > 0 {
			subject = pitch.SubjectLines[0]
		}

		used := make(map[string]string)
		email := types.PersonalizedEmail{
			ProspectID:    record.ProspectID,
			ProspectEmail: record.ProspectEmail,
			Subject:       substitute(subject, vars, used),
			Body:          substitute(pitch.BodyTemplate, vars, used),
		}
		for _, fu := range pitch.FollowUpTemplates {
			email.FollowUps = append(email.FollowUps, types.FollowUp{
				DelayDays: fu.DelayDays,
				Subject:   substitute(fu.Subject, vars, used),
				Body:      substitute(fu.Body, vars, used),
			})
		}
		if len(used) > 0 {
			email.VariablesUsed = used
		}
		emails = append(emails, email)
	}
	return emails
}

// Variables derives the substitution values available for one prospect.
func Variables(record types.ResearchRecord) map[string]string {
	vars := map[string]string{
		"email":      record.ProspectEmail,
		"first_name": firstNameFromEmail(record.ProspectEmail),
	}
	if f := record.Findings; f != nil {
		vars["company_info"] = f.CompanyInfo
		vars["company"] = f.CompanyInfo
		vars["persona"] = f.PersonaDetails
		if len(f.PersonalizationHooks) > 0 {
			vars["hook"] = f.PersonalizationHooks[0]
		}
		if len(f.TriggerEvents) > 0 {
			vars["trigger_event"] = f.TriggerEvents[0]
		}
		if len(f.IndustryInsights) > 0 {
			vars["industry_insight"] = f.IndustryInsights[0]
		}
	}
	return vars
}

// substitute replaces every known placeholder and records the values used. Unknown
// placeholders are removed rather than shipped to a prospect.
func substitute(template string, vars map[string]string, used map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok && value != "" {
			used[name] = value
			return value
		}
		return ""
	})
}

// firstNameFromEmail guesses a first name from the local part of an email address.
// "jane.doe@acme.com" becomes "Jane". Best-effort only; the research stage's persona
// details are the better source when present.
func firstNameFromEmail(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return ""
	}
	if first, _, found := strings.Cut(local, "."); found {
		local = first
	}
	if local == "" {
		return ""
	}
	return strings.ToUpper(local[:1]) + strings.ToLower(local[1:])
}
