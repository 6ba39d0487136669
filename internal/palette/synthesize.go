package palette

import "math/rand/v2"

// RandomSource is satisfied by *rand.Rand; tests inject a seeded one.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

var baseColors = []RGB{
	{R: 255, G: 0, B: 0},
	{R: 0, G: 255, B: 0},
	{R: 0, G: 0, B: 255},
	{R: 255, G: 255, B: 0},
	{R: 255, G: 0, B: 255},
	{R: 0, G: 255, B: 255},
}

// Synthesize pads candidates up to minCount and returns both the padded list
// and a copy truncated to exactly minCount.
func Synthesize(candidates []Candidate, minCount int, similarity float64, random RandomSource) ([]Candidate, []Candidate) {
	if random == nil {
		random = globalSource{}
	}

	full := cloneCandidates(candidates)
	for len(full) < minCount {
		full = append(full, synthesizeCandidate(full, similarity, random))
	}

	truncated := full
	if minCount >= 0 && len(truncated) > minCount {
		truncated = truncated[:minCount]
	}

	return full, cloneCandidates(truncated)
}

func synthesizeCandidate(existing []Candidate, similarity float64, random RandomSource) Candidate {
	for _, base := range baseColors {
		candidate := NewCandidate(base)
		if isDistinctFromSelection(existing, candidate, similarity) {
			return candidate
		}
	}

	return NewCandidate(RGB{
		R: uint8(random.IntN(256)),
		G: uint8(random.IntN(256)),
		B: uint8(random.IntN(256)),
	})
}
