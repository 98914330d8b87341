package domain

// RawTransactionRow is one parsed line from a bank statement CSV. Column
// count varies row to row; Description and ValueText are only populated when
// the parser could locate them.
type RawTransactionRow struct {
	// RawColumns holds the split cells in their original order.
	RawColumns []string
	// Description is the transaction description text, unquoted. Column
	// index 2 in the canonical nine-column bank export.
	Description string
	// ValueText is the raw numeric text before cleaning. Column index 3 in
	// the canonical layout.
	ValueText string
	// LineNumber is the 1-based line number in the source file, kept for
	// diagnostics.
	LineNumber int
}

// ClassifiedTransaction is a statement row that matched one of the account
// classification rules. Amount is always positive; zero, negative and
// unparsable values never classify.
type ClassifiedTransaction struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}
