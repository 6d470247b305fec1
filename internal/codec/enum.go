package codec

import (
	"encoding/json"
	"fmt"
)

// Enum maps a small integer type onto the codes it declares. Values outside the
// declared set are rejected in both directions.
type Enum[T ~int] struct {
	kind     string
	declared map[T]struct{}
}

// NewEnum returns a codec for kind that accepts exactly the given values.
func NewEnum[T ~int](kind string, values ...T) Enum[T] {
	declared := make(map[T]struct{}, len(values))
	for _, v := range values {
		declared[v] = struct{}{}
	}
	return Enum[T]{kind: kind, declared: declared}
}

// Declared reports whether v is one of the enum's values.
func (e Enum[T]) Declared(v T) bool {
	_, ok := e.declared[v]
	return ok
}

// Encode returns the integer code of v.
func (e Enum[T]) Encode(v T) (any, error) {
	if !e.Declared(v) {
		return nil, fmt.Errorf("%d is not a valid %s", int(v), e.kind)
	}
	return int64(v), nil
}

// Decode maps a wire code to its value. An undeclared code is a *DecodeError.
func (e Enum[T]) Decode(raw json.RawMessage) (T, error) {
	n, err := decodeInt(e.kind, raw, false)
	if err != nil {
		return 0, err
	}
	v := T(n)
	if int64(v) != n || !e.Declared(v) {
		return 0, decodeError(e.kind, raw, "undeclared code")
	}
	return v, nil
}
