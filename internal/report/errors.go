package report

import "fmt"

// FieldError describes why a field of a row could not be read.
type FieldError struct {
	Field   string // Field id
	Value   string // The rejected value, if it was read
	Message string // Human-readable error message
	Err     error
}

func (e *FieldError) Error() string {
	switch {
	case e.Value != "":
		return fmt.Sprintf("%s: %q %s", e.Field, e.Value, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
