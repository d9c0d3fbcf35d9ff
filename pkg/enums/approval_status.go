package enums

import "fmt"

// ApprovalStatus gates whether a pending loan becomes effective. Both aprovado
// and rejeitado are terminal.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pendente"
	ApprovalStatusApproved ApprovalStatus = "aprovado"
	ApprovalStatusRejected ApprovalStatus = "rejeitado"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// IsValid reports whether the value is a known ApprovalStatus.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether further approve/reject calls are disallowed.
func (a ApprovalStatus) IsTerminal() bool {
	return a == ApprovalStatusApproved || a == ApprovalStatusRejected
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
