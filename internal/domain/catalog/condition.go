package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Condition grades how worn a listed item is. ConditionAny is the
// "no filter" sentinel.
type Condition string

const (
	ConditionAny     Condition = ""
	ConditionNew     Condition = "NEW"
	ConditionLikeNew Condition = "LIKE_NEW"
	ConditionGood    Condition = "GOOD"
	ConditionFair    Condition = "FAIR"
	ConditionPoor    Condition = "POOR"
)

var ErrUnknownCondition = errors.New("catalog: unknown condition")

var conditionLabels = map[Condition]string{
	ConditionNew:     "New",
	ConditionLikeNew: "Like New",
	ConditionGood:    "Good",
	ConditionFair:    "Fair",
	ConditionPoor:    "Poor",
}

// Conditions returns every concrete condition from best to worst.
func Conditions() []Condition {
	return []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}
}

// ParseCondition maps a wire value to a concrete condition. "ALL" and the
// empty string map to ConditionAny.
func ParseCondition(raw string) (Condition, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" || normalized == "ALL" {
		return ConditionAny, nil
	}
	candidate := Condition(normalized)
	if _, ok := conditionLabels[candidate]; !ok {
		return ConditionAny, fmt.Errorf("%w: %q", ErrUnknownCondition, raw)
	}
	return candidate, nil
}

func (c Condition) Valid() bool {
	_, ok := conditionLabels[c]
	return ok
}

func (c Condition) Any() bool {
	return c == ConditionAny
}

func (c Condition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return "Any"
}

func (c Condition) String() string {
	return string(c)
}
