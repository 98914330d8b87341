package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luandatrans/backoffice/internal/domain"
)

// Account labels used in results and error messages. Account 002 receives
// branch cash deposits, account 001 receives TPA terminal settlements.
const (
	AccountCashLabel = "002"
	AccountTPALabel  = "001"
)

// ReportSource supplies date-ranged, status-filtered operational day records.
type ReportSource interface {
	OperationalReports(ctx context.Context, start, end time.Time) ([]domain.OperationalDayRecord, error)
}

// VerifyInput carries one bank verification request.
type VerifyInput struct {
	Bank  domain.BankAccount
	Start time.Time
	End   time.Time
	// Account002CSV is the raw cash-account statement export.
	Account002CSV string
	// Account001CSV is the raw TPA-account statement export.
	Account001CSV string
}

// Service runs the full reconciliation pipeline: aggregate expected revenue,
// parse and classify both statements, compare within tolerance.
type Service struct {
	reports    ReportSource
	aggregator *RevenueAggregator
	parser     *StatementParser
	comparator Comparator
	log        zerolog.Logger
}

func NewService(reports ReportSource, aggregator *RevenueAggregator, tolerance float64, log zerolog.Logger) *Service {
	return &Service{
		reports:    reports,
		aggregator: aggregator,
		parser:     NewStatementParser(log),
		comparator: NewComparator(tolerance),
		log:        log,
	}
}

// Verify produces the reconciliation verdict for one request. Statement or
// classification failures abort the whole verification; a partial verdict on
// financial data is never produced.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*domain.ReconciliationResult, error) {
	records, err := s.reports.OperationalReports(ctx, in.Start, in.End)
	if err != nil {
		return nil, fmt.Errorf("loading operational reports: %w", err)
	}

	revenue := s.aggregator.NetRevenue(records, in.Bank)
	s.log.Info().
		Str("bank", in.Bank.String()).
		Int("included_records", revenue.IncludedRecords).
		Int("excluded_records", revenue.ExcludedRecords).
		Float64("gross_revenue", revenue.GrossRevenue).
		Float64("total_expenses", revenue.TotalExpenses).
		Float64("net_revenue", revenue.NetRevenue).
		Msg("Aggregated operational revenue")

	cash, err := s.sumStatement(AccountCashLabel, RuleCashDeposit, in.Account002CSV)
	if err != nil {
		return nil, err
	}
	tpa, err := s.sumStatement(AccountTPALabel, RuleTPASettlement, in.Account001CSV)
	if err != nil {
		return nil, err
	}

	bankTotal, status, difference, details := s.comparator.Compare(revenue.NetRevenue, cash.Total, tpa.Total)

	result := &domain.ReconciliationResult{
		DateRange:         fmt.Sprintf("%s to %s", in.Start.Format("2006-01-02"), in.End.Format("2006-01-02")),
		TotalNetRevenue:   revenue.NetRevenue,
		Account002Total:   cash.Total,
		Account001Total:   tpa.Total,
		BankTotalDeposits: bankTotal,
		Status:            status,
		Difference:        difference,
		Details:           details,
		Account002:        cash,
		Account001:        tpa,
	}

	s.log.Info().
		Str("status", status).
		Float64("bank_total", bankTotal).
		Float64("difference", difference).
		Msg("Reconciliation verdict")

	return result, nil
}

// sumStatement parses one statement and sums the rows matching the given
// rule, retaining each classified transaction for the audit breakdown.
func (s *Service) sumStatement(account string, rule *Rule, csvText string) (domain.AccountBreakdown, error) {
	breakdown := domain.AccountBreakdown{
		AccountLabel: account,
		RuleName:     rule.Name,
	}

	if strings.TrimSpace(csvText) == "" {
		return breakdown, &EmptyStatementError{Account: account}
	}

	it := s.parser.Parse(csvText)
	rows := 0
	for {
		row, err := it.Next()
		if errors.Is(err, Done) {
			break
		}
		if err != nil {
			return breakdown, fmt.Errorf("account %s statement: %w", account, err)
		}
		rows++

		tx, ok := rule.MatchRow(row)
		if !ok {
			continue
		}
		breakdown.Transactions = append(breakdown.Transactions, tx)
		breakdown.Total += tx.Amount
	}

	if len(breakdown.Transactions) == 0 {
		return breakdown, &NoQualifyingTransactionsError{Account: account, Rule: rule.Name}
	}

	s.log.Info().
		Str("account", account).
		Str("rule", rule.Name).
		Int("rows_seen", rows).
		Int("transactions", len(breakdown.Transactions)).
		Float64("total", breakdown.Total).
		Msg("Classified statement transactions")

	return breakdown, nil
}
