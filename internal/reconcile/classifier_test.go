package reconcile

import (
	"testing"

	"github.com/luandatrans/backoffice/internal/domain"
)

func TestCashRuleMatchesAccentVariants(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want bool
	}{
		{"accented ordinal", "Depósito nº 123/45", true},
		{"plain ascii", "DEPOSITO N 55", true},
		{"unrelated credit", "Transferência recebida", false},
		{"tpa settlement", "Fecho TPA 7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := domain.RawTransactionRow{
				Description: tt.desc,
				ValueText:   "131,000.00",
			}
			tx, ok := RuleCashDeposit.MatchRow(row)
			if ok != tt.want {
				t.Fatalf("MatchRow(%q) ok = %v, want %v", tt.desc, ok, tt.want)
			}
			if ok && tx.Amount != 131000 {
				t.Errorf("amount = %v, want 131000", tx.Amount)
			}
		})
	}
}

func TestTPARuleExcludesCommissionLines(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want bool
	}{
		{"settlement", "Fecho TPA 7", true},
		{"accented settlement", "FECHO TPA Nº7", true},
		{"commission fee", "Comissões - Fecho TPA", false},
		{"commission ascii", "comissoes fecho tpa", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := domain.RawTransactionRow{
				Description: tt.desc,
				ValueText:   "96,000.00",
			}
			_, ok := RuleTPASettlement.MatchRow(row)
			if ok != tt.want {
				t.Errorf("MatchRow(%q) ok = %v, want %v", tt.desc, ok, tt.want)
			}
		})
	}
}

func TestMatchRowFallbackColumnScan(t *testing.T) {
	// Short rows never get placed description/value columns; the rule must
	// find them itself.
	row := domain.RawTransactionRow{
		RawColumns: []string{"Deposito n 5", "", "25,000.00"},
	}

	tx, ok := RuleCashDeposit.MatchRow(row)
	if !ok {
		t.Fatal("expected fallback scan to classify the row")
	}
	if tx.Amount != 25000 {
		t.Errorf("amount = %v, want 25000", tx.Amount)
	}
	if tx.Description != "Deposito n 5" {
		t.Errorf("description = %q", tx.Description)
	}
}

func TestMatchRowFallbackScanLimitedToThreeColumns(t *testing.T) {
	row := domain.RawTransactionRow{
		RawColumns: []string{"Deposito n 5", "x", "y", "z", "25,000.00"},
	}

	if _, ok := RuleCashDeposit.MatchRow(row); ok {
		t.Error("value four columns after the fragment must not be picked up")
	}
}

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"131,000.00", 131000, true},
		{"Kz 2 500.75", 2500.75, true},
		{"96,000.00 AOA", 96000, true},
		{"", 0, false},
		{"sem valor", 0, false},
		{"0.00", 0, false},
		{"-100.00", 0, false},
		{"--", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanAmount(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CleanAmount(%q) = (%v, %v), want (%v, %v)",
					tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFoldText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Depósito nº 55", "deposito no 55"},
		{"COMISSÕES", "comissoes"},
		{"fecho tpa", "fecho tpa"},
	}

	for _, tt := range tests {
		if got := foldText(tt.in); got != tt.want {
			t.Errorf("foldText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
