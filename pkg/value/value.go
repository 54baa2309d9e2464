// Package value implements the closed variant type carried by a
// taskolib Context: an int64, a float64, a string, a bool, or nothing.
package value

import "fmt"

// Kind tags which of Value's arms is populated.
type Kind int

const (
	// KindNone marks an absent value, used to request deletion of a
	// context variable on export.
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "none"
	}
}

// Value is a closed sum type over the four scripting-language-friendly
// scalar kinds a Context variable can hold.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// None is the absent value.
var None = Value{kind: KindNone}

func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Any returns the underlying Go value boxed as interface{}, or nil for
// KindNone. This is the conversion boundary used when importing/exporting
// values into and out of the Script Host.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// FromAny converts a host-language value back into a Value. It accepts the
// Go types a goja runtime naturally produces for numbers, strings and bools;
// anything else yields (Value{}, false).
func FromAny(a any) (Value, bool) {
	switch x := a.(type) {
	case nil:
		return None, true
	case int64:
		return Int(x), true
	case int:
		return Int(int64(x)), true
	case float64:
		return Float(x), true
	case string:
		return String(x), true
	case bool:
		return Bool(x), true
	default:
		return Value{}, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return "<none>"
	}
}
