package toodledo

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/teemow/toodledo/internal/codec"
)

// Object is a serialized entity: wire names mapped to wire primitives.
type Object map[string]any

// Form renders the object as form parameters.
func (o Object) Form() url.Values {
	form := make(url.Values, len(o))
	for k, v := range o {
		form.Set(k, codec.FormatWire(v))
	}
	return form
}

// Field binds one entity attribute to its wire name and codec.
type Field[E any] interface {
	Name() string
	WireName() string
	encode(e *E) (v any, present bool, err error)
	decode(e *E, raw json.RawMessage) error
}

type field[E, T any] struct {
	name  string
	wire  string
	codec codec.Codec[T]
	ref   func(e *E) *Opt[T]
}

func bind[E, T any](name, wire string, c codec.Codec[T], ref func(e *E) *Opt[T]) Field[E] {
	return field[E, T]{name: name, wire: wire, codec: c, ref: ref}
}

func (f field[E, T]) Name() string     { return f.name }
func (f field[E, T]) WireName() string { return f.wire }

func (f field[E, T]) encode(e *E) (any, bool, error) {
	v, ok := f.ref(e).Get()
	if !ok {
		return nil, false, nil
	}
	w, err := f.codec.Encode(v)
	if err != nil {
		return nil, true, fmt.Errorf("field %s: %w", f.name, err)
	}
	return w, true, nil
}

func (f field[E, T]) decode(e *E, raw json.RawMessage) error {
	v, err := f.codec.Decode(raw)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.wire, err)
	}
	*f.ref(e) = Some(v)
	return nil
}

// Schema is the ordered field list of one entity kind.
type Schema[E any] struct {
	kind     string
	identity string
	fields   []Field[E]
	byWire   map[string]Field[E]
}

func newSchema[E any](kind, identity string, fields ...Field[E]) *Schema[E] {
	byWire := make(map[string]Field[E], len(fields))
	for _, f := range fields {
		byWire[f.WireName()] = f
	}
	return &Schema[E]{kind: kind, identity: identity, fields: fields, byWire: byWire}
}

// Kind returns the entity kind, e.g. "task".
func (s *Schema[E]) Kind() string {
	return s.kind
}

// Fields returns the domain names in declaration order.
func (s *Schema[E]) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name()
	}
	return out
}

// WireNames returns the wire names in declaration order.
func (s *Schema[E]) WireNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.WireName()
	}
	return out
}

// Serialize emits the present fields of e under their wire names.
func (s *Schema[E]) Serialize(e *E) (Object, error) {
	return s.serialize(e, false)
}

// SerializeNew is Serialize without the identity field, for creating records.
func (s *Schema[E]) SerializeNew(e *E) (Object, error) {
	return s.serialize(e, true)
}

func (s *Schema[E]) serialize(e *E, dropIdentity bool) (Object, error) {
	obj := make(Object)
	for _, f := range s.fields {
		if dropIdentity && f.WireName() == s.identity {
			continue
		}
		v, ok, err := f.encode(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.kind, err)
		}
		if ok {
			obj[f.WireName()] = v
		}
	}
	return obj, nil
}

// Deserialize builds a new entity from a wire object. Keys without a declared
// field and null values are ignored.
func (s *Schema[E]) Deserialize(obj map[string]json.RawMessage) (E, error) {
	var e E
	for key, raw := range obj {
		f, ok := s.byWire[key]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := f.decode(&e, raw); err != nil {
			return e, fmt.Errorf("%s: %w", s.kind, err)
		}
	}
	return e, nil
}

// DeserializeJSON decodes a raw JSON object and deserializes it.
func (s *Schema[E]) DeserializeJSON(raw json.RawMessage) (E, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		var zero E
		return zero, fmt.Errorf("%s: expected a JSON object: %w", s.kind, err)
	}
	return s.Deserialize(obj)
}

// DeserializeAll deserializes every record in order.
func (s *Schema[E]) DeserializeAll(records []json.RawMessage) ([]E, error) {
	out := make([]E, 0, len(records))
	for i, raw := range records {
		e, err := s.DeserializeJSON(raw)
		if err != nil {
			return out, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
