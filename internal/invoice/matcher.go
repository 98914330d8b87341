package invoice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchThreshold is the minimum similarity for a catalog match. It is
// deliberately conservative: an unmatched item falls back to its raw
// description, which is safe, while a wrong catalog mapping silently
// misattributes inventory.
const MatchThreshold = 0.82

// containmentBoost is added when one normalized string contains the other.
const containmentBoost = 0.08

// CatalogMatcher selects the best catalog name for an extracted description
// by bigram Dice similarity.
type CatalogMatcher struct {
	names []string
}

func NewCatalogMatcher(names []string) *CatalogMatcher {
	return &CatalogMatcher{names: names}
}

// BestMatch returns the single highest-scoring catalog name for the
// description. ok is false when no candidate reaches MatchThreshold.
func (m *CatalogMatcher) BestMatch(description string) (name string, score float64, ok bool) {
	best := -1.0
	for _, candidate := range m.names {
		s := Similarity(description, candidate)
		if s > best {
			best = s
			name = candidate
		}
	}
	if best < MatchThreshold {
		return "", 0, false
	}
	return name, best, true
}

// Similarity computes the bigram Dice coefficient of the two strings after
// normalization, with a small boost when one is contained in the other.
// Scores are in [0, 1].
func Similarity(a, b string) float64 {
	na := normalizeText(a)
	nb := normalizeText(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ra := []rune(na)
	rb := []rune(nb)
	if len(ra) < 2 || len(rb) < 2 {
		// Distinct strings (equality handled above) with no bigrams.
		return 0
	}

	score := diceCoefficient(ra, rb)
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		score += containmentBoost
		if score > 1 {
			score = 1
		}
	}
	return score
}

// diceCoefficient computes 2·|A∩B| / (|A|+|B|) over the multisets of
// consecutive two-rune windows. Each bigram occurrence is consumed once, so
// repeats are not double counted.
func diceCoefficient(a, b []rune) float64 {
	countsA := make(map[string]int)
	for i := 0; i < len(a)-1; i++ {
		countsA[string(a[i:i+2])]++
	}

	matched := 0
	for i := 0; i < len(b)-1; i++ {
		bg := string(b[i : i+2])
		if countsA[bg] > 0 {
			countsA[bg]--
			matched++
		}
	}

	totalA := len(a) - 1
	totalB := len(b) - 1
	return 2 * float64(matched) / float64(totalA+totalB)
}

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases, strips combining marks, replaces every
// non-alphanumeric rune with a space and collapses runs of whitespace.
func normalizeText(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(accentStripper, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	lastSpace := true
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
