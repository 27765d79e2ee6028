package vectorized

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidOperation is the kind of errors caused by wrong input kinds or shapes.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCompute is the kind of errors raised by a codec for a row.
	ErrCompute = errors.New("compute error")

	// ErrMissingOperand is the kind of errors raised when a required operand is null.
	ErrMissingOperand = errors.New("missing operand")
)

// OperationError describes the first problem detected by a call.
//
// Row is -1 when the error is not tied to a row. The kind sentinel matches via
// errors.Is and the codec failure (if any) can be accessed via errors.Unwrap.
type OperationError struct {
	Kind  error
	Op    string
	Row   int
	Field string
	Msg   string
	cause error
}

func (e *OperationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	sb.WriteString(": ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Row >= 0 {
		fmt.Fprintf(&sb, "row %d: ", e.Row)
	}
	sb.WriteString(e.Msg)
	if e.cause != nil && e.Msg != e.cause.Error() {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *OperationError) Unwrap() error { return e.cause }

// Is reports whether target is the kind sentinel of this error.
func (e *OperationError) Is(target error) bool { return target == e.Kind }

// InvalidOperation returns an ErrInvalidOperation error that is not tied to a row.
func InvalidOperation(format string, args ...interface{}) error {
	return &OperationError{Kind: ErrInvalidOperation, Row: -1, Msg: fmt.Sprintf(format, args...)}
}

// InvalidOperationAt returns an ErrInvalidOperation error for a row.
func InvalidOperationAt(row int, format string, args ...interface{}) error {
	return &OperationError{Kind: ErrInvalidOperation, Row: row, Msg: fmt.Sprintf(format, args...)}
}

// ComputeError wraps a codec failure for a row.
func ComputeError(row int, cause error) error {
	var oe *OperationError
	if errors.As(cause, &oe) {
		// Codecs may already classify their own failure.
		if oe.Row < 0 {
			clone := *oe
			clone.Row = row
			return &clone
		}
		return oe
	}
	return &OperationError{Kind: ErrCompute, Row: row, Msg: cause.Error(), cause: cause}
}

// MissingOperand returns an ErrMissingOperand error naming the operand that was null.
func MissingOperand(row int, field string, msg string) error {
	return &OperationError{Kind: ErrMissingOperand, Row: row, Field: field, Msg: msg}
}

// WithOp tags an OperationError with the operation that raised it.
// Other errors are returned unchanged.
func WithOp(err error, op string) error {
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Op != "" {
		return err
	}
	clone := *oe
	clone.Op = op
	return &clone
}

// RowOf returns the row an error is tied to, or -1.
func RowOf(err error) int {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Row
	}
	return -1
}
