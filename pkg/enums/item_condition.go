package enums

import "fmt"

// ItemCondition describes the physical state of an inventory item.
type ItemCondition string

const (
	ItemConditionGood    ItemCondition = "bom"
	ItemConditionRegular ItemCondition = "regular"
	ItemConditionBad     ItemCondition = "ruim"
)

var validItemConditions = []ItemCondition{
	ItemConditionGood,
	ItemConditionRegular,
	ItemConditionBad,
}

// IsValid reports whether the value is a known ItemCondition.
func (i ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into an ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
