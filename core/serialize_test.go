package core

import (
	"bytes"
	"testing"
)

// TestSerializeScalars tests serialization of scalar objects
func TestSerializeScalars(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"real", Real(3.5), "3.5"},
		{"whole real", Real(2), "2"},
		{"string", String("hello"), "(hello)"},
		{"string with parens", String("a(b)c"), "(a\\(b\\)c)"},
		{"string with backslash", String(`a\b`), `(a\\b)`},
		{"name", Name("Type"), "/Type"},
		{"name with space", Name("A B"), "/A#20B"},
		{"ref", IndirectRef{Number: 12, Generation: 0}, "12 0 R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Serialize(tt.obj)); got != tt.want {
				t.Errorf("Serialize(%v) = %q, want %q", tt.obj, got, tt.want)
			}
		})
	}
}

// TestSerializeDictDeterministic tests that dict serialization is stable
// across repeated calls, which the size-probing loop depends on
func TestSerializeDictDeterministic(t *testing.T) {
	d := Dict{
		"Type":   Name("Page"),
		"Count":  Int(3),
		"Zebra":  Bool(true),
		"Alpha":  String("x"),
		"Nested": Dict{"B": Int(2), "A": Int(1)},
	}

	first := Serialize(d)
	for i := 0; i < 10; i++ {
		if got := Serialize(d); !bytes.Equal(got, first) {
			t.Fatalf("serialization not deterministic: %q vs %q", got, first)
		}
	}
}

// TestSerializeDictSorted tests that dict keys appear in sorted order
func TestSerializeDictSorted(t *testing.T) {
	d := Dict{"B": Int(2), "A": Int(1), "C": Int(3)}
	got := string(Serialize(d))
	want := "<< /A 1 /B 2 /C 3 >>"
	if got != want {
		t.Errorf("Serialize(dict) = %q, want %q", got, want)
	}
}

// TestSerializeStream tests stream framing
func TestSerializeStream(t *testing.T) {
	s := &Stream{Dict: Dict{}, Data: nil}
	s.SetData([]byte("hello"))

	got := string(Serialize(s))
	want := "<< /Length 5 >>\nstream\nhello\nendstream"
	if got != want {
		t.Errorf("Serialize(stream) = %q, want %q", got, want)
	}
}

// TestSerializeArray tests array serialization
func TestSerializeArray(t *testing.T) {
	a := Array{Int(1), Name("Two"), String("three")}
	got := string(Serialize(a))
	want := "[1 /Two (three)]"
	if got != want {
		t.Errorf("Serialize(array) = %q, want %q", got, want)
	}
}
