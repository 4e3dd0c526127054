package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Referable is implemented by documents the backend may populate in place of an ID.
type Referable interface {
	RefID() string
}

// Ref is a reference field that the backend returns either as a bare ID
// string or as the populated document.
type Ref[T any] struct {
	ID    string
	Value *T
}

// Get returns the populated value or a zero value.
func (r Ref[T]) Get() T {
	if r.Value == nil {
		var zero T

		return zero
	}

	return *r.Value
}

// Populated reports whether the backend returned the full document.
func (r Ref[T]) Populated() bool {
	return r.Value != nil
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("unmarshal ref id: %w", err)
		}

		*r = Ref[T]{ID: id}
	default:
		value := new(T)
		if err := json.Unmarshal(data, value); err != nil {
			return fmt.Errorf("unmarshal ref value: %w", err)
		}

		*r = Ref[T]{Value: value}

		if referable, ok := any(value).(Referable); ok {
			r.ID = referable.RefID()
		}
	}

	return nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value) //nolint:wrapcheck
	}

	if r.ID == "" {
		return []byte("null"), nil
	}

	return json.Marshal(r.ID) //nolint:wrapcheck
}
