package leads

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrThrottled is returned when a client exceeds the submission rate.
	ErrThrottled = errors.New("too many submissions")

	// ErrNoForm is returned when a lead reaches persistence without a form.
	ErrNoForm = errors.New("lead has no form")
)

// ValidationError lists every field that failed the intake schema. It
// marshals to the {formErrors, fieldErrors} shape the site modals read.
type ValidationError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationError() *ValidationError {
	return &ValidationError{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{},
	}
}

func (e *ValidationError) addField(field, msg string) {
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

// Fields returns the offending field names in sorted order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e *ValidationError) Error() string {
	parts := append([]string(nil), e.FormErrors...)
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], "; "))
	}
	return "invalid payload: " + strings.Join(parts, ", ")
}
