package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is the JSON null.
	KindNull Kind = iota
	// KindBool is a JSON boolean.
	KindBool
	// KindInt is a JSON number without a fractional part.
	KindInt
	// KindDouble is a JSON number with a fractional part or exponent.
	KindDouble
	// KindString is a JSON string.
	KindString
	// KindArray is a JSON array.
	KindArray
	// KindObject is a JSON object.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a closed tagged union over the JSON data model. Responses from the
// backend are dynamically shaped, so callers pattern-match on Kind instead of
// asserting concrete types.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double wraps a floating point number.
func Double(d float64) Value { return Value{kind: KindDouble, d: d} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a list of values.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Object wraps a map of values.
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. The second result is false when the
// value holds a different variant.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsDouble returns the floating point payload.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.d, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns the array payload.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the object payload.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Field looks up a key on an object value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[name]
	return f, ok
}

// ParseValue decodes raw JSON into a Value. Numbers without a fractional part
// that fit into int64 become KindInt, everything else numeric becomes
// KindDouble.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, errors.Join(ErrDecodingFailure, err)
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return Int(i), nil
			}
		}
		d, err := t.Float64()
		if err != nil {
			return Value{}, zerr.With(errors.Join(ErrDecodingFailure, err), "number", t.String())
		}
		return Double(d), nil
	case []any:
		arr := make([]Value, len(t))
		for i, el := range t {
			v, err := fromAny(el)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Array(arr...), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, el := range t {
			v, err := fromAny(el)
			if err != nil {
				return Value{}, err
			}
			obj[k] = v
		}
		return Object(obj), nil
	default:
		return Value{}, zerr.With(ErrDecodingFailure, "type", "unsupported")
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindDouble:
		return json.Marshal(v.d)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, el := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := el.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		// Sorted keys keep the encoding deterministic.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, zerr.With(zerr.New("failed to encode value"), "kind", int(v.kind))
	}
}
