package palette

// Filter keeps the background (index 0) and every later candidate that has
// enough area and is farther than similarity from all accepted colors.
func Filter(candidates []Candidate, areaThreshold float64, similarity float64) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	background := candidates[0]
	minArea := areaThreshold * areaLooseningRate

	kept := make([]Candidate, 0, len(candidates))
	kept = append(kept, background)
	for _, candidate := range candidates[1:] {
		if candidate.Area <= minArea {
			continue
		}
		if !isDistinctFromSelection(kept, candidate, similarity) {
			continue
		}
		kept = append(kept, candidate)
	}

	return kept
}

// Boost doubles the area of vivid candidates, leaving order untouched.
func Boost(candidates []Candidate, spreadThreshold int) []Candidate {
	boosted := cloneCandidates(candidates)
	for index, candidate := range boosted {
		if candidate.RGB.Spread() > spreadThreshold {
			boosted[index] = candidate.withArea(candidate.Area * 2)
		}
	}
	return boosted
}
