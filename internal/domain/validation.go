package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrValidation = errors.New("validation failed")

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that failed; it matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError reports a single invalid field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

type fieldErrors []FieldError

func (f *fieldErrors) required(field, v string) {
	if strings.TrimSpace(v) == "" {
		*f = append(*f, FieldError{Field: field, Reason: "is required"})
	}
}

// Lengths are counted in characters, matching varchar(n) semantics.
func (f *fieldErrors) maxLen(field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		*f = append(*f, FieldError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)})
	}
}

func (f *fieldErrors) maxLenPtr(field string, v *string, max int) {
	if v != nil {
		f.maxLen(field, *v, max)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
