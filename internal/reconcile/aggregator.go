package reconcile

import (
	"strings"
	"unicode"

	"github.com/luandatrans/backoffice/internal/domain"
)

// RevenueSummary is the aggregation output over a set of daily reports.
type RevenueSummary struct {
	GrossRevenue    float64
	TotalExpenses   float64
	NetRevenue      float64
	IncludedRecords int
	ExcludedRecords int
}

// RevenueAggregator computes expected net revenue from operational day
// records. The Agaseke plate set is injected rather than compiled in so the
// aggregator stays a pure function of its inputs.
type RevenueAggregator struct {
	agasekePlates map[string]struct{}
}

// NewRevenueAggregator builds an aggregator with the given Agaseke vehicle
// plates. Plates are compared case- and format-insensitively.
func NewRevenueAggregator(agasekePlates []string) *RevenueAggregator {
	set := make(map[string]struct{}, len(agasekePlates))
	for _, p := range agasekePlates {
		if key := normalizePlate(p); key != "" {
			set[key] = struct{}{}
		}
	}
	return &RevenueAggregator{agasekePlates: set}
}

// NetRevenue sums ticket, baggage and cargo revenue minus expenses over the
// given records. For Caixa Angola, records for Agaseke vehicles are excluded
// entirely: neither their revenue nor their expenses participate. Records
// whose status is not Operational never contribute.
//
// A record with an empty plate is never in the Agaseke set and is therefore
// always included; see the data-integrity note in DESIGN.md.
func (a *RevenueAggregator) NetRevenue(records []domain.OperationalDayRecord, bank domain.BankAccount) RevenueSummary {
	var sum RevenueSummary
	for i := range records {
		rec := &records[i]
		if rec.Status != domain.ReportStatusOperational {
			continue
		}
		if bank == domain.BankCaixaAngola && a.isAgaseke(rec.VehiclePlate) {
			sum.ExcludedRecords++
			continue
		}
		sum.IncludedRecords++
		sum.GrossRevenue += rec.GrossRevenue()
		sum.TotalExpenses += rec.TotalExpenses()
	}
	sum.NetRevenue = sum.GrossRevenue - sum.TotalExpenses
	return sum
}

func (a *RevenueAggregator) isAgaseke(plate string) bool {
	_, ok := a.agasekePlates[normalizePlate(plate)]
	return ok
}

// normalizePlate uppercases a plate and drops separators so "LD-23-45-AB"
// and "ld 23 45 ab" compare equal.
func normalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range plate {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
