package palette

import (
	"cmp"
	"slices"
)

// Quantize buckets pixels by their rounded HSL triple. Each bucket's RGB is
// rebuilt from the rounded HSL so near-identical shades share one value.
func Quantize(pixels []RGB) []Candidate {
	if len(pixels) == 0 {
		return nil
	}

	counts := make(map[HSL]int)
	for _, pixel := range pixels {
		counts[pixel.HSL().Rounded()]++
	}

	total := float64(len(pixels))
	candidates := make([]Candidate, 0, len(counts))
	for key, count := range counts {
		candidates = append(candidates, Candidate{
			RGB:   key.RGB(),
			HSL:   key,
			Count: count,
			Area:  float64(count) / total,
		})
	}

	slices.SortFunc(candidates, func(left, right Candidate) int {
		if byCount := cmp.Compare(right.Count, left.Count); byCount != 0 {
			return byCount
		}
		if byHue := cmp.Compare(left.HSL.H, right.HSL.H); byHue != 0 {
			return byHue
		}
		if bySaturation := cmp.Compare(left.HSL.S, right.HSL.S); bySaturation != 0 {
			return bySaturation
		}
		return cmp.Compare(left.HSL.L, right.HSL.L)
	})

	return candidates
}
