package reconcile

import (
	"fmt"
	"math"

	"github.com/luandatrans/backoffice/internal/domain"
)

// DefaultTolerance is the absolute difference, in currency units, still
// considered a successful reconciliation. The threshold is deliberately an
// absolute constant rather than a percentage of volume.
const DefaultTolerance = 1000.0

// Comparator turns the aggregated revenue figure and the two classified
// statement totals into a verdict.
type Comparator struct {
	Tolerance float64
}

func NewComparator(tolerance float64) Comparator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return Comparator{Tolerance: tolerance}
}

// Compare fills the verdict fields of a ReconciliationResult from already
// validated numbers. Status is verified iff |bank − revenue| is within the
// tolerance.
func (c Comparator) Compare(netRevenue, account002Total, account001Total float64) (bankTotal float64, status string, difference float64, details string) {
	bankTotal = account002Total + account001Total
	difference = bankTotal - netRevenue

	if math.Abs(difference) <= c.Tolerance {
		status = domain.VerificationVerified
		details = fmt.Sprintf(
			"Bank deposits of %.2f match net revenue of %.2f within the %.0f tolerance (difference %.2f).",
			bankTotal, netRevenue, c.Tolerance, difference)
		return bankTotal, status, difference, details
	}

	status = domain.VerificationMismatch
	direction := "exceed"
	if difference < 0 {
		direction = "fall short of"
	}
	details = fmt.Sprintf(
		"Bank deposits of %.2f %s net revenue of %.2f by %.2f, outside the %.0f tolerance.",
		bankTotal, direction, netRevenue, math.Abs(difference), c.Tolerance)
	return bankTotal, status, difference, details
}
