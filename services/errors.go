package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError is a user-correctable rejection. The operation that
// returned it made no state change.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports a missing catalog, template or floor entry.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// TransientIOError wraps a failure of the remote store. Callers may retry.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// FatalStateError signals a caller broke the floor lifecycle contract,
// e.g. mutating a floor that was never loaded.
type FatalStateError struct {
	Floor  string
	Reason string
}

func (e *FatalStateError) Error() string {
	return fmt.Sprintf("floor %q: %s", e.Floor, e.Reason)
}

// validationFromOzzo flattens ozzo field errors into a single ValidationError
// naming the first failing field in alphabetical order.
func validationFromOzzo(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, errs[f].Error())
	}
	return &ValidationError{Field: fields[0], Message: strings.Join(msgs, "; ")}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsFatalState reports whether err is a FatalStateError.
func IsFatalState(err error) bool {
	var f *FatalStateError
	return errors.As(err, &f)
}

// IsTransient reports whether err is a TransientIOError.
func IsTransient(err error) bool {
	var t *TransientIOError
	return errors.As(err, &t)
}
