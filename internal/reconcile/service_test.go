package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luandatrans/backoffice/internal/domain"
)

type stubReportSource struct {
	records []domain.OperationalDayRecord
	err     error
}

func (s *stubReportSource) OperationalReports(ctx context.Context, start, end time.Time) ([]domain.OperationalDayRecord, error) {
	return s.records, s.err
}

const cashStatement = "Data Mov.\tData Valor\tDescrição\tValor\tMoeda\n" +
	"05/02/2024\t05/02/2024\tDepósito nº 111\t131,000.00\tAOA\n" +
	"06/02/2024\t06/02/2024\tTransferência recebida\t9,999.00\tAOA\n"

const tpaStatement = "Data Mov.\tData Valor\tDescrição\tValor\tMoeda\n" +
	"05/02/2024\t05/02/2024\tFecho TPA 7\t96,000.00\tAOA\n" +
	"05/02/2024\t05/02/2024\tComissões - Fecho TPA\t500.00\tAOA\n"

func verifyInput() VerifyInput {
	return VerifyInput{
		Bank:          domain.BankCaixaAngola,
		Start:         time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		Account002CSV: cashStatement,
		Account001CSV: tpaStatement,
	}
}

func newTestService(source ReportSource) *Service {
	return NewService(source, NewRevenueAggregator(nil), 0, zerolog.Nop())
}

func TestVerifyProducesVerifiedVerdict(t *testing.T) {
	source := &stubReportSource{
		records: []domain.OperationalDayRecord{
			{
				ReportDate:    time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
				VehiclePlate:  "LD-23-45-AB",
				TicketRevenue: 220000, BaggageRevenue: 8000, CargoRevenue: 2500,
				Expenses: []domain.Expense{{Amount: 4000}},
				Status:   domain.ReportStatusOperational,
			},
		},
	}

	result, err := newTestService(source).Verify(context.Background(), verifyInput())
	require.NoError(t, err)

	assert.Equal(t, "2024-02-01 to 2024-02-29", result.DateRange)
	assert.Equal(t, 226500.0, result.TotalNetRevenue)
	assert.Equal(t, 131000.0, result.Account002Total)
	assert.Equal(t, 96000.0, result.Account001Total)
	assert.Equal(t, 227000.0, result.BankTotalDeposits)
	assert.Equal(t, 500.0, result.Difference)
	assert.Equal(t, domain.VerificationVerified, result.Status)

	// The commission line must appear nowhere in the audit breakdown.
	require.Len(t, result.Account001.Transactions, 1)
	assert.Equal(t, "Fecho TPA 7", result.Account001.Transactions[0].Description)
	assert.Equal(t, "001", result.Account001.AccountLabel)
	assert.Equal(t, "Fecho TPA", result.Account001.RuleName)

	require.Len(t, result.Account002.Transactions, 1)
	assert.Equal(t, "002", result.Account002.AccountLabel)
	assert.Equal(t, "Depósito", result.Account002.RuleName)
}

func TestVerifyMismatchOutsideTolerance(t *testing.T) {
	source := &stubReportSource{
		records: []domain.OperationalDayRecord{
			{
				ReportDate:    time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
				TicketRevenue: 300000,
				Status:        domain.ReportStatusOperational,
			},
		},
	}

	result, err := newTestService(source).Verify(context.Background(), verifyInput())
	require.NoError(t, err)

	assert.Equal(t, domain.VerificationMismatch, result.Status)
	assert.Equal(t, -73000.0, result.Difference)
}

func TestVerifyEmptyStatementFails(t *testing.T) {
	in := verifyInput()
	in.Account001CSV = "   \n  "

	_, err := newTestService(&stubReportSource{}).Verify(context.Background(), in)

	var emptyErr *EmptyStatementError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, AccountTPALabel, emptyErr.Account)
}

func TestVerifyNoQualifyingTransactionsFails(t *testing.T) {
	in := verifyInput()
	in.Account001CSV = "Data Mov.\tData Valor\tDescrição\tValor\tMoeda\n" +
		"05/02/2024\t05/02/2024\tTransferência recebida\t9,999.00\tAOA\n"

	_, err := newTestService(&stubReportSource{}).Verify(context.Background(), in)

	var noMatchErr *NoQualifyingTransactionsError
	require.ErrorAs(t, err, &noMatchErr)
	assert.Equal(t, AccountTPALabel, noMatchErr.Account)
	assert.Equal(t, "Fecho TPA", noMatchErr.Rule)
}

func TestVerifyPropagatesReportSourceError(t *testing.T) {
	source := &stubReportSource{err: errors.New("query timed out")}

	_, err := newTestService(source).Verify(context.Background(), verifyInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading operational reports")
}
