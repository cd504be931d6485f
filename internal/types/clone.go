package types

// Clone helpers give the artifact store real copy semantics: a returned artifact can
// be mutated freely without writing through to store-internal memory.

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// Clone returns a deep copy of the essence.
func (e *Essence) Clone() *Essence {
	if e == nil {
		return nil
	}
	cp := *e
	cp.ValuePropositions = cloneStrings(e.ValuePropositions)
	cp.PainPoints = cloneStrings(e.PainPoints)
	return &cp
}

// Clone returns a deep copy of the findings.
func (f *ResearchFindings) Clone() *ResearchFindings {
	if f == nil {
		return nil
	}
	cp := *f
	cp.IndustryInsights = cloneStrings(f.IndustryInsights)
	cp.TriggerEvents = cloneStrings(f.TriggerEvents)
	cp.PersonalizationHooks = cloneStrings(f.PersonalizationHooks)
	return &cp
}

// Clone returns a deep copy of the record, including its findings.
func (r ResearchRecord) Clone() ResearchRecord {
	cp := r
	cp.Findings = r.Findings.Clone()
	return cp
}

// CloneResearchBatch deep-copies a research batch.
func CloneResearchBatch(batch []ResearchRecord) []ResearchRecord {
	if batch == nil {
		return nil
	}
	out := make([]ResearchRecord, len(batch))
	for i, rec := range batch {
		out[i] = rec.Clone()
	}
	return out
}

// Clone returns a deep copy of the segment.
func (s Segment) Clone() Segment {
	cp := s
	cp.Criteria = SegmentCriteria{
		Industries:    cloneStrings(s.Criteria.Industries),
		Roles:         cloneStrings(s.Criteria.Roles),
		CompanySizes:  cloneStrings(s.Criteria.CompanySizes),
		KeyIndicators: cloneStrings(s.Criteria.KeyIndicators),
	}
	cp.PainPoints = cloneStrings(s.PainPoints)
	return cp
}

// Clone returns a deep copy of the plan and every segment in it.
func (p *SegmentPlan) Clone() *SegmentPlan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Segments = make([]Segment, len(p.Segments))
	for i, seg := range p.Segments {
		cp.Segments[i] = seg.Clone()
	}
	return &cp
}

// Clone returns a deep copy of the pitch.
func (p Pitch) Clone() Pitch {
	cp := p
	cp.KeyMessages = cloneStrings(p.KeyMessages)
	cp.SubjectLines = cloneStrings(p.SubjectLines)
	cp.PersonalizationVariables = cloneStrings(p.PersonalizationVariables)
	if p.FollowUpTemplates != nil {
		cp.FollowUpTemplates = append([]FollowUp(nil), p.FollowUpTemplates...)
	}
	return cp
}

// Clone returns a deep copy of the email.
func (e PersonalizedEmail) Clone() PersonalizedEmail {
	cp := e
	if e.FollowUps != nil {
		cp.FollowUps = append([]FollowUp(nil), e.FollowUps...)
	}
	if e.VariablesUsed != nil {
		cp.VariablesUsed = make(map[string]string, len(e.VariablesUsed))
		for k, v := range e.VariablesUsed {
			cp.VariablesUsed[k] = v
		}
	}
	return cp
}

// Clone returns a deep copy of the receipt and every email in it.
func (r *DispatchReceipt) Clone() *DispatchReceipt {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Emails = make([]PersonalizedEmail, len(r.Emails))
	for i, email := range r.Emails {
		cp.Emails[i] = email.Clone()
	}
	return &cp
}
