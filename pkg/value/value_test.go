package value

import "testing"

func TestValueArms(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"int", Int(42), KindInt},
		{"float", Float(3.5), KindFloat},
		{"string", String("hi"), KindString},
		{"bool", Bool(true), KindBool},
		{"none", None, KindNone},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("%s: got kind %v, want %v", c.name, c.v.Kind(), c.kind)
		}
	}
}

func TestFromAnyRoundTrip(t *testing.T) {
	v, ok := FromAny(int64(7))
	if !ok || v.Kind() != KindInt {
		t.Fatalf("int64 roundtrip failed: %v %v", v, ok)
	}
	i, ok := v.Int()
	if !ok || i != 7 {
		t.Errorf("got (%d,%v), want (7,true)", i, ok)
	}

	v, ok = FromAny("hello")
	if !ok || v.Any() != "hello" {
		t.Errorf("string roundtrip failed: %v", v)
	}

	if _, ok := FromAny([]int{1, 2}); ok {
		t.Error("expected FromAny to reject an unsupported type")
	}
}

func TestNoneIsNil(t *testing.T) {
	if None.Any() != nil {
		t.Error("expected None.Any() to be nil")
	}
	if !None.IsNone() {
		t.Error("expected IsNone true")
	}
}
