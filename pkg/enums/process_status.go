package enums

import "fmt"

// ProcessStatus tracks an administrative process through resolution. Resolvido
// and encaminhado_justica are terminal.
type ProcessStatus string

const (
	ProcessStatusOpen              ProcessStatus = "aberto"
	ProcessStatusInProgress        ProcessStatus = "em_andamento"
	ProcessStatusResolved          ProcessStatus = "resolvido"
	ProcessStatusReferredToJustice ProcessStatus = "encaminhado_justica"
)

var validProcessStatuses = []ProcessStatus{
	ProcessStatusOpen,
	ProcessStatusInProgress,
	ProcessStatusResolved,
	ProcessStatusReferredToJustice,
}

// IsValid reports whether the value is a known ProcessStatus.
func (p ProcessStatus) IsValid() bool {
	for _, candidate := range validProcessStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the process has reached a final outcome.
func (p ProcessStatus) IsTerminal() bool {
	return p == ProcessStatusResolved || p == ProcessStatusReferredToJustice
}

// ParseProcessStatus converts raw input into a ProcessStatus.
func ParseProcessStatus(value string) (ProcessStatus, error) {
	for _, candidate := range validProcessStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid process status %q", value)
}
