package invoice

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical after normalization", "Filtro de Óleo", "filtro de oleo", 1},
		{"empty input", "", "Filtro de óleo", 0},
		{"single rune no bigrams", "a", "b", 0},
		{"containment boosted", "abcd", "abcdef", 0.83},
		{"disjoint", "xy", "ab", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	a, b := "Pastilhas de travão", "pastilhas de travao dianteiras"
	if Similarity(a, b) != Similarity(b, a) {
		t.Error("similarity must not depend on argument order")
	}
}

func TestSimilarityBigramMultiset(t *testing.T) {
	// "aaaa" has three "aa" bigrams, "aa" has one; consume-once matching
	// gives 2·1/(3+1) = 0.5, plus the containment boost.
	got := Similarity("aaaa", "aa")
	if math.Abs(got-0.58) > 1e-9 {
		t.Errorf("Similarity(aaaa, aa) = %v, want 0.58", got)
	}
}

func TestBestMatchAgainstCatalog(t *testing.T) {
	m := NewCatalogMatcher(CandidateNames(nil))

	name, score, ok := m.BestMatch("FILTRO DE OLEO MANN")
	if !ok {
		t.Fatal("expected a catalog match")
	}
	if name != "Filtro de óleo" {
		t.Errorf("matched %q, want the catalog spelling", name)
	}
	if score < MatchThreshold {
		t.Errorf("score %v below threshold", score)
	}
}

func TestBestMatchBelowThreshold(t *testing.T) {
	m := NewCatalogMatcher(CandidateNames(nil))

	if name, _, ok := m.BestMatch("Serviço de lavagem"); ok {
		t.Errorf("unexpected match %q for an unrelated description", name)
	}
}

func TestBestMatchNoCandidates(t *testing.T) {
	m := NewCatalogMatcher(nil)
	if _, _, ok := m.BestMatch("Filtro de óleo"); ok {
		t.Error("empty candidate list must never match")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Filtro de Óleo  ", "filtro de oleo"},
		{"Pneu 295/80 R22.5", "pneu 295 80 r22 5"},
		{"ÓLEO_MOTOR...15W40", "oleo motor 15w40"},
		{"", ""},
		{"***", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
