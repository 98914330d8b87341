package domain

import "time"

// ReportStatusOperational is the only status that contributes to revenue
// totals; draft or cancelled reports are ignored by the aggregator.
const ReportStatusOperational = "Operational"

// Expense is a single expense line attached to a daily report.
type Expense struct {
	Amount float64 `json:"amount"`
}

// OperationalDayRecord is one vehicle's reporting for one calendar day.
// The backing store guarantees at most one record per (vehicle, date).
type OperationalDayRecord struct {
	ReportDate     time.Time `json:"report_date"`
	VehiclePlate   string    `json:"vehicle_plate"`
	TicketRevenue  float64   `json:"ticket_revenue"`
	BaggageRevenue float64   `json:"baggage_revenue"`
	CargoRevenue   float64   `json:"cargo_revenue"`
	Expenses       []Expense `json:"expenses"`
	Status         string    `json:"status"`
}

// GrossRevenue is the record's ticket + baggage + cargo revenue.
func (r *OperationalDayRecord) GrossRevenue() float64 {
	return r.TicketRevenue + r.BaggageRevenue + r.CargoRevenue
}

// TotalExpenses sums the record's expense lines. A record with no expenses
// contributes zero.
func (r *OperationalDayRecord) TotalExpenses() float64 {
	var total float64
	for _, e := range r.Expenses {
		total += e.Amount
	}
	return total
}
