package bigquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/luandatrans/backoffice/internal/domain"
)

// VerificationRunRow is the retained audit record of one bank verification.
// The per-transaction breakdown is stored as JSON so the verdict stays
// queryable instead of living only in log output.
type VerificationRunRow struct {
	VerificationID    string            `bigquery:"verification_id"`
	Bank              string            `bigquery:"bank"`
	RangeStart        civil.Date        `bigquery:"range_start"`
	RangeEnd          civil.Date        `bigquery:"range_end"`
	TotalNetRevenue   float64           `bigquery:"total_net_revenue"`
	Account002Total   float64           `bigquery:"account_002_total"`
	Account001Total   float64           `bigquery:"account_001_total"`
	BankTotalDeposits float64           `bigquery:"bank_total_deposits"`
	Status            string            `bigquery:"status"`
	Difference        float64           `bigquery:"difference"`
	Details           string            `bigquery:"details"`
	Breakdown         bigquery.NullJSON `bigquery:"breakdown"`
	VerifiedTS        time.Time         `bigquery:"verified_ts"`
}

// InsertVerificationRun persists the audit record for a completed
// verification and returns its generated id.
func (r *Repository) InsertVerificationRun(ctx context.Context, bank domain.BankAccount, start, end time.Time, result *domain.ReconciliationResult) (string, error) {
	verificationID := uuid.NewString()

	breakdown := bigquery.NullJSON{}
	payload, err := json.Marshal(map[string]domain.AccountBreakdown{
		"account002": result.Account002,
		"account001": result.Account001,
	})
	if err == nil {
		breakdown = bigquery.NullJSON{JSONVal: string(payload), Valid: true}
	}

	row := &VerificationRunRow{
		VerificationID:    verificationID,
		Bank:              bank.String(),
		RangeStart:        civil.DateOf(start),
		RangeEnd:          civil.DateOf(end),
		TotalNetRevenue:   result.TotalNetRevenue,
		Account002Total:   result.Account002Total,
		Account001Total:   result.Account001Total,
		BankTotalDeposits: result.BankTotalDeposits,
		Status:            result.Status,
		Difference:        result.Difference,
		Details:           result.Details,
		Breakdown:         breakdown,
		VerifiedTS:        time.Now(),
	}

	inserter := r.client.Dataset(r.dataset).Table(verificationsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return "", fmt.Errorf("InsertVerificationRun: inserting row: %w", err)
	}
	return verificationID, nil
}
