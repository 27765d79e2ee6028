package vectorized

import (
	"fmt"
	"strings"
)

// NullPolicy decides what a null operand does to a row
type NullPolicy int

const (
	// Propagate yields a null output row without invoking the codec.
	Propagate NullPolicy = iota
	// FailOnMissingOperand aborts the whole call on the first null operand.
	FailOnMissingOperand
)

// String returns the string representation of a null policy
func (p NullPolicy) String() string {
	switch p {
	case Propagate:
		return "PROPAGATE"
	case FailOnMissingOperand:
		return "FAIL_ON_MISSING_OPERAND"
	default:
		return "UNKNOWN"
	}
}

// operand is one input of a row, rendered only when a row fails
type operand struct {
	name  string
	value interface{}
	valid bool
}

// firstMissing returns the index of the first invalid operand, or -1
func firstMissing(valid ...bool) int {
	for i, ok := range valid {
		if !ok {
			return i
		}
	}
	return -1
}

// missingOperandError names the missing operand and the values provided for the row
func missingOperandError(row int, missing int, operands []operand) error {
	provided := make([]string, len(operands))
	for i, op := range operands {
		if op.valid {
			provided[i] = fmt.Sprintf("%s: %v", op.name, op.value)
		} else {
			provided[i] = fmt.Sprintf("%s: null", op.name)
		}
	}
	name := operands[missing].name
	return MissingOperand(row, name,
		fmt.Sprintf("%s cannot be null. Provided %s", name, strings.Join(provided, ", ")))
}
