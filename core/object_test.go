package core

import (
	"testing"
)

// TestDictGetters tests typed dictionary access
func TestDictGetters(t *testing.T) {
	stream := &Stream{Dict: Dict{}}
	d := Dict{
		"Name":   Name("Page"),
		"Int":    Int(7),
		"Dict":   Dict{"K": Int(1)},
		"Array":  Array{Int(1), Int(2)},
		"String": String("text"),
		"Stream": stream,
		"Ref":    IndirectRef{Number: 3, Generation: 0},
	}

	if v, ok := d.GetName("Name"); !ok || v != "Page" {
		t.Errorf("GetName() = %v, %v", v, ok)
	}
	if v, ok := d.GetInt("Int"); !ok || v != 7 {
		t.Errorf("GetInt() = %v, %v", v, ok)
	}
	if v, ok := d.GetDict("Dict"); !ok || len(v) != 1 {
		t.Errorf("GetDict() = %v, %v", v, ok)
	}
	if v, ok := d.GetArray("Array"); !ok || len(v) != 2 {
		t.Errorf("GetArray() = %v, %v", v, ok)
	}
	if v, ok := d.GetString("String"); !ok || v != "text" {
		t.Errorf("GetString() = %v, %v", v, ok)
	}
	if v, ok := d.GetStream("Stream"); !ok || v != stream {
		t.Errorf("GetStream() = %v, %v", v, ok)
	}
	if v, ok := d.GetIndirectRef("Ref"); !ok || v.Number != 3 {
		t.Errorf("GetIndirectRef() = %v, %v", v, ok)
	}

	// Wrong type and missing key both report false.
	if _, ok := d.GetInt("Name"); ok {
		t.Error("GetInt() on a Name should report false")
	}
	if _, ok := d.GetName("Absent"); ok {
		t.Error("GetName() on a missing key should report false")
	}
}

// TestDictMutation tests Set, Delete, Has, and Keys
func TestDictMutation(t *testing.T) {
	d := Dict{}
	d.Set("A", Int(1))
	d.Set("B", Int(2))

	if !d.Has("A") || !d.Has("B") {
		t.Error("Has() should report set keys")
	}
	if len(d.Keys()) != 2 {
		t.Errorf("Keys() = %v, want 2 entries", d.Keys())
	}

	d.Delete("A")
	if d.Has("A") {
		t.Error("Has() should report false after Delete")
	}
	d.Delete("A") // deleting twice is a no-op
}

// TestClone tests deep copying of container objects
func TestClone(t *testing.T) {
	stream := &Stream{Dict: Dict{}}
	stream.SetData([]byte{1, 2, 3})

	original := Dict{
		"Nested": Dict{"K": Int(1)},
		"List":   Array{Int(1)},
		"Body":   stream,
	}

	cloned := Clone(original).(Dict)

	// Mutate every level of the clone.
	cloned.Set("New", Int(9))
	cloned["Nested"].(Dict).Set("K", Int(99))
	cloned["List"].(Array)[0] = Int(99)
	cloned["Body"].(*Stream).Data[0] = 99

	if original.Has("New") {
		t.Error("clone shares the top-level map")
	}
	if v, _ := original["Nested"].(Dict).GetInt("K"); v != 1 {
		t.Error("clone shares nested dicts")
	}
	if original["List"].(Array)[0] != Int(1) {
		t.Error("clone shares arrays")
	}
	if stream.Data[0] != 1 {
		t.Error("clone shares stream payloads")
	}
}

// TestSetDataLength tests that SetData keeps Length in sync
func TestSetDataLength(t *testing.T) {
	s := &Stream{Dict: Dict{}}
	s.SetData([]byte("abcdef"))

	if length, ok := s.Dict.GetInt("Length"); !ok || length != 6 {
		t.Errorf("Length = %v, want 6", length)
	}

	s.SetData(nil)
	if length, _ := s.Dict.GetInt("Length"); length != 0 {
		t.Errorf("Length after clearing = %v, want 0", length)
	}
}
