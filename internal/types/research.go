package types

// ResearchFindings holds the structured signals gathered for a single prospect.
type ResearchFindings struct {
	CompanyInfo          string   `json:"company_info"`
	IndustryInsights     []string `json:"industry_insights"`
	PersonaDetails       string   `json:"persona_details"`
	TriggerEvents        []string `json:"trigger_events"`
	PersonalizationHooks []string `json:"personalization_hooks"`
}

// ResearchRecord is the research result for one prospect. A record may carry an error
// marker without invalidating the batch; a batch is usable as long as at least one
// record succeeded.
type ResearchRecord struct {
	ProspectID    string            `json:"prospect_id" validate:"required"`
	ProspectEmail string            `json:"prospect_email"`
	Findings      *ResearchFindings `json:"findings,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Failed reports whether the record carries an error marker.
func (r ResearchRecord) Failed() bool {
	return r.Error != ""
}

// SuccessfulRecords filters a batch down to the records without error markers.
func SuccessfulRecords(batch []ResearchRecord) []ResearchRecord {
	var out []ResearchRecord
	for _, rec := range batch {
		if !rec.Failed() {
			out = append(out, rec)
		}
	}
	return out
}
