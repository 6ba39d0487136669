package palette

const (
	accentMinSaturation = 50
	accentMinLightness  = 50
	accentMaxLightness  = 80
	textMaxLightness    = 30
	backgroundMinLight  = 80
)

type Roles struct {
	Primary    Candidate `json:"primary"`
	Secondary  Candidate `json:"secondary"`
	Accent     Candidate `json:"accent"`
	Text       Candidate `json:"text"`
	Background Candidate `json:"background"`
}

// Categorize is total: an empty palette resolves to black, white and gray.
func Categorize(candidates []Candidate) Roles {
	roles := Roles{
		Primary:    NewCandidate(colorBlack),
		Secondary:  NewCandidate(colorWhite),
		Accent:     NewCandidate(colorGray),
		Text:       NewCandidate(colorBlack),
		Background: NewCandidate(colorWhite),
	}
	if len(candidates) == 0 {
		return roles
	}

	first := candidates[0]
	roles.Primary = first

	roles.Secondary = first
	if len(candidates) > 1 {
		roles.Secondary = candidates[1]
	}

	if accent, ok := DetectAccent(candidates); ok {
		roles.Accent = accent
	} else if len(candidates) > 2 {
		roles.Accent = candidates[2]
	} else {
		roles.Accent = first
	}

	roles.Text = first
	for _, candidate := range candidates {
		if candidate.HSL.L < textMaxLightness {
			roles.Text = candidate
			break
		}
	}

	roles.Background = candidates[len(candidates)-1]
	for _, candidate := range candidates {
		if candidate.HSL.L > backgroundMinLight {
			roles.Background = candidate
			break
		}
	}

	return roles
}

func DetectAccent(candidates []Candidate) (Candidate, bool) {
	for _, candidate := range candidates {
		if candidate.HSL.S > accentMinSaturation &&
			candidate.HSL.L > accentMinLightness &&
			candidate.HSL.L < accentMaxLightness {
			return candidate, true
		}
	}
	return Candidate{}, false
}

// PromoteAccent moves the accent found in the pre-truncation list to the
// front of the truncated list and keeps the length at minCount.
func PromoteAccent(full []Candidate, truncated []Candidate, minCount int) []Candidate {
	accent, ok := DetectAccent(full)
	if !ok {
		return cloneCandidates(truncated)
	}

	promoted := make([]Candidate, 0, len(truncated)+1)
	promoted = append(promoted, accent)
	for _, candidate := range truncated {
		if candidate.RGB == accent.RGB {
			continue
		}
		promoted = append(promoted, candidate)
	}

	if minCount > 0 && len(promoted) > minCount {
		promoted = promoted[:minCount]
	}

	return promoted
}
