package types

// ExtractionOutcome is the result of locating the structured block in raw text.
// When Candidate is nil, Narrative is the whole (trimmed) input.
type ExtractionOutcome struct {
	Candidate *string
	Narrative string
}

// HasCandidate reports whether a candidate block was located.
func (o ExtractionOutcome) HasCandidate() bool {
	return o.Candidate != nil
}
