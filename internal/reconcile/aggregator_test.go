package reconcile

import (
	"testing"
	"time"

	"github.com/luandatrans/backoffice/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []domain.OperationalDayRecord {
	return []domain.OperationalDayRecord{
		{
			ReportDate:    day(1),
			VehiclePlate:  "LD-23-45-AB",
			TicketRevenue: 100000, BaggageRevenue: 20000, CargoRevenue: 10000,
			Expenses: []domain.Expense{{Amount: 3000}, {Amount: 2000}},
			Status:   domain.ReportStatusOperational,
		},
		{
			ReportDate:    day(1),
			VehiclePlate:  "AG 11 22 CD",
			TicketRevenue: 50000,
			Status:        domain.ReportStatusOperational,
		},
		{
			ReportDate:    day(2),
			VehiclePlate:  "LD-99-99-ZZ",
			TicketRevenue: 99999,
			Status:        "Draft",
		},
		{
			ReportDate:    day(2),
			TicketRevenue: 1000,
			Status:        domain.ReportStatusOperational,
		},
	}
}

func TestNetRevenueCaixaExcludesAgaseke(t *testing.T) {
	// Plate spelled differently from the configured form; normalization
	// must still match it.
	agg := NewRevenueAggregator([]string{"ag-11-22-cd"})

	sum := agg.NetRevenue(sampleRecords(), domain.BankCaixaAngola)

	if sum.IncludedRecords != 2 {
		t.Errorf("included = %d, want 2", sum.IncludedRecords)
	}
	if sum.ExcludedRecords != 1 {
		t.Errorf("excluded = %d, want 1", sum.ExcludedRecords)
	}
	if sum.GrossRevenue != 131000 {
		t.Errorf("gross = %v, want 131000", sum.GrossRevenue)
	}
	if sum.TotalExpenses != 5000 {
		t.Errorf("expenses = %v, want 5000", sum.TotalExpenses)
	}
	if sum.NetRevenue != 126000 {
		t.Errorf("net = %v, want 126000", sum.NetRevenue)
	}
}

func TestNetRevenueBAIIncludesAgaseke(t *testing.T) {
	agg := NewRevenueAggregator([]string{"AG 11 22 CD"})

	sum := agg.NetRevenue(sampleRecords(), domain.BankBAI)

	if sum.ExcludedRecords != 0 {
		t.Errorf("excluded = %d, want 0 for BAI", sum.ExcludedRecords)
	}
	if sum.NetRevenue != 176000 {
		t.Errorf("net = %v, want 176000", sum.NetRevenue)
	}
}

func TestNetRevenueSkipsNonOperational(t *testing.T) {
	agg := NewRevenueAggregator(nil)

	sum := agg.NetRevenue(sampleRecords(), domain.BankCaixaAngola)

	// The Draft record contributes nothing and is not counted as an
	// Agaseke exclusion either.
	if sum.IncludedRecords != 3 {
		t.Errorf("included = %d, want 3", sum.IncludedRecords)
	}
	if sum.ExcludedRecords != 0 {
		t.Errorf("excluded = %d, want 0", sum.ExcludedRecords)
	}
	if sum.GrossRevenue != 181000 {
		t.Errorf("gross = %v, want 181000", sum.GrossRevenue)
	}
}

func TestNetRevenueEmptyPlateNeverAgaseke(t *testing.T) {
	// A configured empty plate must not turn the empty-plate record into
	// an Agaseke exclusion.
	agg := NewRevenueAggregator([]string{""})

	sum := agg.NetRevenue(sampleRecords(), domain.BankCaixaAngola)
	if sum.ExcludedRecords != 0 {
		t.Errorf("excluded = %d, want 0", sum.ExcludedRecords)
	}
}

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"LD-23-45-AB", "LD2345AB"},
		{"ld 23 45 ab", "LD2345AB"},
		{"", ""},
		{"--", ""},
	}
	for _, tt := range tests {
		if got := normalizePlate(tt.in); got != tt.want {
			t.Errorf("normalizePlate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
