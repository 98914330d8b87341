package domain

import "fmt"

// BankAccount identifies one of the two company bank accounts that
// operational revenue is deposited into.
type BankAccount int

const (
	// BankCaixaAngola receives deposits for the main fleet only; Agaseke
	// vehicles settle through BAI instead.
	BankCaixaAngola BankAccount = iota
	// BankBAI receives deposits for the whole fleet.
	BankBAI
)

// ParseBankAccount maps the wire value used by the upload form onto the
// closed BankAccount set. Unknown values are rejected rather than silently
// treated as BAI.
func ParseBankAccount(s string) (BankAccount, error) {
	switch s {
	case "Caixa Angola":
		return BankCaixaAngola, nil
	case "BAI":
		return BankBAI, nil
	default:
		return 0, fmt.Errorf("unknown bank %q: expected \"Caixa Angola\" or \"BAI\"", s)
	}
}

func (b BankAccount) String() string {
	switch b {
	case BankCaixaAngola:
		return "Caixa Angola"
	case BankBAI:
		return "BAI"
	default:
		return fmt.Sprintf("BankAccount(%d)", int(b))
	}
}
