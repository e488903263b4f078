package models

import (
	"bytes"
	"encoding/json"
)

// Nullable is a patch field for a nullable record field. The zero value means "not supplied";
// an explicit JSON null sets Set with a nil Value, which clears the stored field.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a supplied [Nullable] holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a supplied [Nullable] that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the document, so reaching it marks the field supplied.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// applyTo overwrites *dst with a copy of Value when the field was supplied.
func (n Nullable[T]) applyTo(dst **T) {
	if n.Set {
		*dst = copyPtr(n.Value)
	}
}
