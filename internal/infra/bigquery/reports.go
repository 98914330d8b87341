package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/luandatrans/backoffice/internal/domain"
)

// DailyReportRow is one vehicle's daily report as stored in
// <dataset>.daily_reports. Expense amounts are a repeated field aggregated
// from the expenses child table.
type DailyReportRow struct {
	ReportDate     civil.Date `bigquery:"report_date"`
	VehiclePlate   string     `bigquery:"vehicle_plate"`
	TicketRevenue  float64    `bigquery:"ticket_revenue"`
	BaggageRevenue float64    `bigquery:"baggage_revenue"`
	CargoRevenue   float64    `bigquery:"cargo_revenue"`
	Expenses       []float64  `bigquery:"expenses"`
	Status         string     `bigquery:"status"`
}

// OperationalReports returns the Operational daily reports inside the
// inclusive date range, with their expense amounts, ordered by date then
// plate. Implements reconcile.ReportSource.
func (r *Repository) OperationalReports(ctx context.Context, start, end time.Time) ([]domain.OperationalDayRecord, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
		  d.report_date,
		  IFNULL(v.plate, "") AS vehicle_plate,
		  d.ticket_revenue,
		  d.baggage_revenue,
		  d.cargo_revenue,
		  ARRAY(
		    SELECT e.amount
		    FROM %s e
		    WHERE e.report_id = d.report_id
		    ORDER BY e.position
		  ) AS expenses,
		  d.status
		FROM %s d
		LEFT JOIN %s v ON v.vehicle_id = d.vehicle_id
		WHERE d.status = @status
		  AND d.report_date BETWEEN @start_date AND @end_date
		ORDER BY d.report_date, vehicle_plate
	`, r.table("report_expenses"), r.table(dailyReportsTable), r.table("vehicles")))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: domain.ReportStatusOperational},
		{Name: "start_date", Value: civil.DateOf(start)},
		{Name: "end_date", Value: civil.DateOf(end)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("OperationalReports: query read: %w", err)
	}

	var records []domain.OperationalDayRecord
	for {
		var row DailyReportRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("OperationalReports: iter next: %w", err)
		}
		records = append(records, rowToRecord(row))
	}

	return records, nil
}

func rowToRecord(row DailyReportRow) domain.OperationalDayRecord {
	rec := domain.OperationalDayRecord{
		ReportDate:     row.ReportDate.In(time.UTC),
		VehiclePlate:   row.VehiclePlate,
		TicketRevenue:  row.TicketRevenue,
		BaggageRevenue: row.BaggageRevenue,
		CargoRevenue:   row.CargoRevenue,
		Status:         row.Status,
	}
	for _, amount := range row.Expenses {
		rec.Expenses = append(rec.Expenses, domain.Expense{Amount: amount})
	}
	return rec
}
