package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Codec converts one field kind between its domain value and its wire primitive.
// Encode returns either an int64 or a string.
type Codec[T any] interface {
	Encode(v T) (any, error)
	Decode(raw json.RawMessage) (T, error)
}

// DecodeError reports a wire value that does not map to any domain value.
type DecodeError struct {
	Kind   string // field kind, e.g. "boolean" or "priority"
	Raw    string // the offending wire value
	Reason string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s from %s: %s", e.Kind, e.Raw, e.Reason)
}

func decodeError(kind string, raw json.RawMessage, reason string) *DecodeError {
	return &DecodeError{Kind: kind, Raw: string(raw), Reason: reason}
}

// decodeInt reads an integer that the API sends either as a JSON number or as a
// numeric string. A blank string decodes to 0 only when allowEmpty is set.
func decodeInt(kind string, raw json.RawMessage, allowEmpty bool) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, decodeError(kind, raw, err.Error())
	}

	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, decodeError(kind, raw, "not an integer")
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, decodeError(kind, raw, "out of range")
		}
		return int64(f), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			if allowEmpty {
				return 0, nil
			}
			return 0, decodeError(kind, raw, "empty value")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, decodeError(kind, raw, "not an integer")
		}
		return n, nil
	default:
		return 0, decodeError(kind, raw, "expected a number")
	}
}

type intCodec struct{ kind string }

func (c intCodec) Encode(v int64) (any, error) { return v, nil }

func (c intCodec) Decode(raw json.RawMessage) (int64, error) { return decodeInt(c.kind, raw, true) }

// Int passes integers through unchanged.
var Int Codec[int64] = intCodec{kind: "integer"}

// ListID is the folder/context reference codec. The domain value 0 means the task
// has no folder (or context), which is also the wire sentinel.
var ListID Codec[int64] = listIDCodec{}

type listIDCodec struct{}

func (listIDCodec) Encode(v int64) (any, error) {
	if v < 0 {
		return nil, fmt.Errorf("list id must not be negative, got %d", v)
	}
	return v, nil
}

func (listIDCodec) Decode(raw json.RawMessage) (int64, error) {
	n, err := decodeInt("list id", raw, true)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, decodeError("list id", raw, "negative id")
	}
	return n, nil
}

type stringCodec struct{ maxLen int }

func (c stringCodec) Encode(v string) (any, error) {
	if c.maxLen > 0 && utf8.RuneCountInString(v) > c.maxLen {
		return nil, fmt.Errorf("value is %d characters long, maximum is %d", utf8.RuneCountInString(v), c.maxLen)
	}
	return v, nil
}

func (c stringCodec) Decode(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", decodeError("string", raw, "expected a string")
	}
	return s, nil
}

// String passes strings through unchanged.
var String Codec[string] = stringCodec{}

// BoundedString rejects values longer than maxLen characters on encode.
func BoundedString(maxLen int) Codec[string] {
	return stringCodec{maxLen: maxLen}
}

type boolCodec struct{}

func (boolCodec) Encode(v bool) (any, error) {
	if v {
		return int64(1), nil
	}
	return int64(0), nil
}

func (boolCodec) Decode(raw json.RawMessage) (bool, error) {
	n, err := decodeInt("boolean", raw, false)
	if err != nil {
		return false, err
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, decodeError("boolean", raw, "expected 0 or 1")
	}
}

// Bool maps true/false to 1/0.
var Bool Codec[bool] = boolCodec{}

// FormatWire renders an encoded wire primitive as a form parameter value.
func FormatWire(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
