package enums

import "fmt"

// ProcessType classifies an administrative process incident.
type ProcessType string

const (
	ProcessTypeLoss          ProcessType = "perda"
	ProcessTypeBreakage      ProcessType = "quebra"
	ProcessTypePoorCondition ProcessType = "mas_condicoes"
	ProcessTypeTheft         ProcessType = "roubo"
)

var validProcessTypes = []ProcessType{
	ProcessTypeLoss,
	ProcessTypeBreakage,
	ProcessTypePoorCondition,
	ProcessTypeTheft,
}

// IsValid reports whether the value is a known ProcessType.
func (p ProcessType) IsValid() bool {
	for _, candidate := range validProcessTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProcessType converts raw input into a ProcessType.
func ParseProcessType(value string) (ProcessType, error) {
	for _, candidate := range validProcessTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid process type %q", value)
}
