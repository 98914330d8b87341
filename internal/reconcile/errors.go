package reconcile

import "fmt"

// EmptyStatementError reports that an uploaded statement was empty or
// whitespace-only. It fails the verification before any row parsing.
type EmptyStatementError struct {
	Account string
}

func (e *EmptyStatementError) Error() string {
	return fmt.Sprintf("account %s statement is empty", e.Account)
}

// NoQualifyingTransactionsError reports that a statement produced zero
// classified transactions for its expected rule. A statement with zero
// matches almost certainly means a wrong file was uploaded or the bank
// changed its export format; summing it as zero would corrupt the
// verification, so this always aborts the request.
type NoQualifyingTransactionsError struct {
	Account string
	Rule    string
}

func (e *NoQualifyingTransactionsError) Error() string {
	return fmt.Sprintf("account %s statement contained no %s transactions", e.Account, e.Rule)
}
