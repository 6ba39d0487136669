package palette

import "github.com/samber/lo"

const mutedAlpha = 0.5

type FormattedColor struct {
	Hex  string  `json:"hex"`
	RGB  string  `json:"rgb"`
	Area float64 `json:"area"`
}

// Result is the record handed to callers. A failed extraction has the same
// shape with every role nil and both lists empty.
type Result struct {
	PrimaryColor    *string          `json:"primaryColor"`
	SecondaryColor  *string          `json:"secondaryColor"`
	AccentColor     *string          `json:"accentColor"`
	TextColor       *string          `json:"textColor"`
	BackgroundColor *string          `json:"backgroundColor"`
	MutedColor      *string          `json:"mutedColor"`
	Grayscale       []string         `json:"grayscale"`
	AllColors       []FormattedColor `json:"allColors"`
}

func EmptyResult() Result {
	return Result{
		Grayscale: []string{},
		AllColors: []FormattedColor{},
	}
}

func (r Result) Empty() bool {
	return r.PrimaryColor == nil && len(r.AllColors) == 0
}

func Format(candidates []Candidate, roles Roles) Result {
	top := roles.Primary.RGB

	return Result{
		PrimaryColor:    lo.ToPtr(roles.Primary.RGB.CSS()),
		SecondaryColor:  lo.ToPtr(roles.Secondary.RGB.CSS()),
		AccentColor:     lo.ToPtr(roles.Accent.RGB.CSS()),
		TextColor:       lo.ToPtr(roles.Text.RGB.CSS()),
		BackgroundColor: lo.ToPtr(roles.Background.RGB.CSS()),
		MutedColor:      lo.ToPtr(top.CSSAlpha(mutedAlpha)),
		Grayscale:       []string{top.Grayscale().CSS()},
		AllColors: lo.Map(candidates, func(candidate Candidate, _ int) FormattedColor {
			return FormattedColor{
				Hex:  candidate.RGB.Hex(),
				RGB:  candidate.RGB.CSS(),
				Area: candidate.Area,
			}
		}),
	}
}
