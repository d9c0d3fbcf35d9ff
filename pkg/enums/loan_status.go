package enums

import "fmt"

// LoanStatus tracks the lifecycle of a loan separately from its approval gate.
// Devolvido and cancelado are terminal; atrasado is persisted by the periodic
// overdue reconciliation.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ativo"
	LoanStatusReturned  LoanStatus = "devolvido"
	LoanStatusOverdue   LoanStatus = "atrasado"
	LoanStatusCancelled LoanStatus = "cancelado"
)

var validLoanStatuses = []LoanStatus{
	LoanStatusActive,
	LoanStatusReturned,
	LoanStatusOverdue,
	LoanStatusCancelled,
}

// String implements fmt.Stringer.
func (l LoanStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LoanStatus.
func (l LoanStatus) IsValid() bool {
	for _, candidate := range validLoanStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the loan can no longer change lifecycle status.
func (l LoanStatus) IsTerminal() bool {
	return l == LoanStatusReturned || l == LoanStatusCancelled
}

// ParseLoanStatus converts raw input into a LoanStatus.
func ParseLoanStatus(value string) (LoanStatus, error) {
	for _, candidate := range validLoanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan status %q", value)
}
