package toodledo

import (
	"encoding/json"
	"fmt"
)

// Opt is a value that may be absent.
type Opt[T any] struct {
	value   T
	present bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, present: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether the value is set.
func (o Opt[T]) Present() bool {
	return o.present
}

// Value returns the value, or the zero value of T when absent.
func (o Opt[T]) Value() T {
	return o.value
}

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// IsZero reports whether the value is absent, so that struct fields tagged
// omitzero drop absent values from JSON output.
func (o Opt[T]) IsZero() bool {
	return !o.present
}

// String implements fmt.Stringer.
func (o Opt[T]) String() string {
	if !o.present {
		return "<absent>"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
