package domain

// Verification statuses for a reconciliation verdict.
const (
	VerificationVerified = "verified"
	VerificationMismatch = "mismatch"
)

// AccountBreakdown retains the classified transactions that were summed for
// one bank account, so the verdict is auditable as data rather than only as
// log output.
type AccountBreakdown struct {
	AccountLabel string                  `json:"account_label"`
	RuleName     string                  `json:"rule_name"`
	Transactions []ClassifiedTransaction `json:"transactions"`
	Total        float64                 `json:"total"`
}

// ReconciliationResult is the verdict of one bank verification request.
// Status is "verified" iff |Difference| is within the tolerance used by the
// comparator.
type ReconciliationResult struct {
	DateRange         string           `json:"dateRange"`
	TotalNetRevenue   float64          `json:"totalNetRevenue"`
	Account002Total   float64          `json:"account002Total"`
	Account001Total   float64          `json:"account001Total"`
	BankTotalDeposits float64          `json:"bankTotalDeposits"`
	Status            string           `json:"status"`
	Difference        float64          `json:"difference"`
	Details           string           `json:"details"`
	Account002        AccountBreakdown `json:"account002"`
	Account001        AccountBreakdown `json:"account001"`
}
