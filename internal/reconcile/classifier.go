package reconcile

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/luandatrans/backoffice/internal/domain"
)

// Rule classifies a parsed statement row as a qualifying transaction for one
// bank account. Fragments are matched as substrings of the folded
// (lowercased, accent-stripped) description, so "Depósito nº 12" and
// "deposito n 12" both qualify under a single fragment. A row matching any
// Exclude fragment never qualifies.
type Rule struct {
	Name      string
	Fragments []string
	Excludes  []string
}

// RuleCashDeposit matches branch cash deposits on account 002.
var RuleCashDeposit = &Rule{
	Name:      "Depósito",
	Fragments: []string{"deposito n"},
}

// RuleTPASettlement matches electronic terminal settlements on account 001.
// Commission fee lines also contain "fecho tpa" and must never be summed.
var RuleTPASettlement = &Rule{
	Name:      "Fecho TPA",
	Fragments: []string{"fecho tpa"},
	Excludes:  []string{"comissoes"},
}

// MatchRow applies the rule to a parsed row. When the parser could not place
// the description and value columns (short rows), the rule falls back to
// scanning every column for its fragment and then up to the next three
// columns for the first positive numeric value.
func (r *Rule) MatchRow(row domain.RawTransactionRow) (domain.ClassifiedTransaction, bool) {
	desc := row.Description
	valueText := row.ValueText

	if desc == "" || valueText == "" {
		desc, valueText = r.scanColumns(row.RawColumns)
	}
	if desc == "" {
		return domain.ClassifiedTransaction{}, false
	}

	folded := foldText(desc)
	if !containsAny(folded, r.Fragments) {
		return domain.ClassifiedTransaction{}, false
	}
	if containsAny(folded, r.Excludes) {
		return domain.ClassifiedTransaction{}, false
	}

	amount, ok := CleanAmount(valueText)
	if !ok {
		return domain.ClassifiedTransaction{}, false
	}
	return domain.ClassifiedTransaction{Amount: amount, Description: desc}, true
}

// scanColumns locates the rule fragment anywhere in the row, then looks for
// the first positive numeric value in the three columns that follow it.
func (r *Rule) scanColumns(cols []string) (desc, valueText string) {
	for i, col := range cols {
		cell := stripQuotes(col)
		if !containsAny(foldText(cell), r.Fragments) {
			continue
		}
		desc = cell
		for j := i + 1; j < len(cols) && j <= i+3; j++ {
			candidate := stripQuotes(cols[j])
			if _, ok := CleanAmount(candidate); ok {
				valueText = candidate
				break
			}
		}
		return desc, valueText
	}
	return "", ""
}

// CleanAmount strips everything except digits, '.' and '-' from the raw
// value text and parses the remainder. Only strictly positive values
// qualify; zero, negative and unparsable values are rejected rather than
// summed as zero.
func CleanAmount(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases and strips combining marks so accent variants compare
// equal.
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
