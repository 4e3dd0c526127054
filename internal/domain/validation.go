package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrValidation is matched by ValidationErrors.
var ErrValidation = errors.New("validation failed")

// ValidationErrors maps form field names to the message shown next to the field.
type ValidationErrors map[string]string

// Add records msg for field unless the field already has a message.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Set records msg for field, replacing any earlier message.
func (v ValidationErrors) Set(field, msg string) {
	v[field] = msg
}

// Err returns v as an error, or nil if no field failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}

	return v
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation //nolint:errorlint
}

// AsValidationErrors extracts field messages from err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}

	return nil, false
}
