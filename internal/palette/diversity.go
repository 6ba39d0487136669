package palette

import (
	"cmp"
	"slices"
)

const (
	hueBandTolerance = 30
	diversityMinArea = 0.0001
)

var canonicalHues = []float64{0, 60, 120, 180, 240, 300}

// Diversify appends a pool candidate for every canonical hue band that kept
// does not cover, then re-sorts by descending area. The sort is stable.
func Diversify(kept []Candidate, pool []Candidate) []Candidate {
	result := cloneCandidates(kept)

	for _, hue := range canonicalHues {
		if hasHueNear(kept, hue) {
			continue
		}
		for _, candidate := range pool {
			if candidate.Area <= diversityMinArea {
				continue
			}
			if hueDelta(candidate.HSL.H, hue) <= hueBandTolerance {
				result = append(result, candidate)
				break
			}
		}
	}

	slices.SortStableFunc(result, func(left, right Candidate) int {
		return cmp.Compare(right.Area, left.Area)
	})

	return result
}

func hasHueNear(candidates []Candidate, hue float64) bool {
	for _, candidate := range candidates {
		if hueDelta(candidate.HSL.H, hue) <= hueBandTolerance {
			return true
		}
	}
	return false
}
