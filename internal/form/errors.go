package form

import (
	"errors"
	"strings"
)

var (
	// ErrReadOnly is returned when a form in view mode is mutated or submitted.
	ErrReadOnly = errors.New("form is read-only")

	// ErrSubmitInFlight is returned while a previous submit has not finished.
	ErrSubmitInFlight = errors.New("a save is already in progress")

	// ErrUnchanged is returned when submitting a draft that equals its seed.
	ErrUnchanged = errors.New("nothing to save")

	// ErrUnknownAttachment is returned when detaching a file the draft does not hold.
	ErrUnknownAttachment = errors.New("attachment not in draft")
)

// FieldError is a validation failure for a single input.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ValidationErrors collects every failing field of a draft.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Field returns the first error recorded for field, if any.
func (v ValidationErrors) Field(field string) (FieldError, bool) {
	for _, fe := range v {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
