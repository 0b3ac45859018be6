package domain

import (
	"cmp"
	"slices"
	"strings"
)

// purposeTiers lists purpose codes from most to least significant; only the
// best match counts.
var purposeTiers = []struct {
	code  string
	score int
}{
	{"N", 50}, // immediate attention of aircraft operators
	{"B", 25}, // PIB entry
	{"O", 10}, // operationally significant for IFR flights
	{"M", 5},  // miscellaneous
}

// scopeScores are additive across all scope codes present.
var scopeScores = map[string]int{
	"A": 20, // aerodrome
	"E": 10, // en-route
	"W": 5,  // navigation warning
	"K": 0,  // checklist
}

// ScoreByPurpose returns the highest matching purpose tier, or 0.
func ScoreByPurpose(n Notam) int {
	for _, tier := range purposeTiers {
		if n.Purpose.Has(tier.code) {
			return tier.score
		}
	}
	return 0
}

// ScoreByType weights replacements above new notices.
func ScoreByType(n Notam) int {
	switch n.Type {
	case TypeReplace:
		return 50
	case TypeNew:
		return 20
	default:
		return 10
	}
}

// ScoreByClassification adds weight to military notices.
func ScoreByClassification(n Notam) int {
	switch n.Classification {
	case ClassMilitary, ClassLocalMilitary:
		return 10
	default:
		return 0
	}
}

// ScoreBySeriesAndScope combines the series bonus with the scope codes.
func ScoreBySeriesAndScope(n Notam) int {
	score := 0
	if n.Series == "R" {
		score += 20
	}
	for _, code := range n.Scope {
		score += scopeScores[code]
	}
	return score
}

// Score is the total priority of a notice. Higher sorts first.
func Score(n Notam) int {
	return ScoreByPurpose(n) + ScoreByType(n) + ScoreByClassification(n) + ScoreBySeriesAndScope(n)
}

// SortByPriority returns a new slice ordered by descending Score, then by the
// ascending numeric value of the digits in Number. Remaining ties keep their
// input order. The input is not modified.
func SortByPriority(notams []Notam) []Notam {
	type keyed struct {
		notam  Notam
		score  int
		number string
	}

	ks := make([]keyed, len(notams))
	for i, n := range notams {
		ks[i] = keyed{notam: n, score: Score(n), number: numberDigits(n.Number)}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return compareDigits(a.number, b.number)
	})

	out := make([]Notam, len(ks))
	for i, k := range ks {
		out[i] = k.notam
	}
	return out
}

// numberDigits concatenates the decimal digits of a NOTAM number, so
// "A2157/24" becomes "215724". Leading zeros are dropped; no digits yields "".
func numberDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "0")
}

// compareDigits orders two normalised digit strings by numeric value without
// overflowing on long inputs. The empty string is zero.
func compareDigits(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
