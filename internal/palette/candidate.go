package palette

// Candidate is one representative color weighted by its share of sampled pixels.
type Candidate struct {
	RGB   RGB     `json:"rgb"`
	HSL   HSL     `json:"hsl"`
	Count int     `json:"count"`
	Area  float64 `json:"area"`
}

// NewCandidate builds a zero-weight candidate for a color that was not sampled.
func NewCandidate(rgb RGB) Candidate {
	return Candidate{RGB: rgb, HSL: rgb.HSL().Rounded()}
}

func (c Candidate) withArea(area float64) Candidate {
	c.Area = area
	return c
}

func cloneCandidates(candidates []Candidate) []Candidate {
	if candidates == nil {
		return nil
	}
	return append([]Candidate(nil), candidates...)
}

func isDistinctFromSelection(selected []Candidate, candidate Candidate, threshold float64) bool {
	for _, existing := range selected {
		if existing.HSL.Distance(candidate.HSL) <= threshold {
			return false
		}
	}
	return true
}
