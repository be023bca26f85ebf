package filters

import (
	"bytes"
	"testing"
)

// TestFlateRoundTrip tests that FlateEncode output decodes back
func TestFlateRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello")},
		{"repetitive", bytes.Repeat([]byte("abcd"), 1000)},
		{"binary", []byte{0, 1, 2, 255, 254, 253, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := FlateEncode(tt.data)
			if err != nil {
				t.Fatalf("FlateEncode() error: %v", err)
			}
			dec, err := FlateDecode(enc, nil)
			if err != nil {
				t.Fatalf("FlateDecode() error: %v", err)
			}
			if !bytes.Equal(dec, tt.data) {
				t.Errorf("round trip changed data: got %d bytes, want %d", len(dec), len(tt.data))
			}
		})
	}
}

// TestPNGPredictorUp tests undoing the PNG Up filter
func TestPNGPredictorUp(t *testing.T) {
	// Two rows of 3 columns, 1 color. Row format: filter byte + data.
	// Row 1 uses None (0), row 2 uses Up (2).
	predicted := []byte{
		0, 10, 20, 30,
		2, 5, 5, 5,
	}
	want := []byte{
		10, 20, 30,
		15, 25, 35,
	}

	got, err := undoPNGPredictor(predicted, 3, 1)
	if err != nil {
		t.Fatalf("undoPNGPredictor() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("undoPNGPredictor() = %v, want %v", got, want)
	}
}

// TestPNGPredictorSub tests undoing the PNG Sub filter
func TestPNGPredictorSub(t *testing.T) {
	predicted := []byte{
		1, 10, 10, 10,
	}
	want := []byte{
		10, 20, 30,
	}

	got, err := undoPNGPredictor(predicted, 3, 1)
	if err != nil {
		t.Fatalf("undoPNGPredictor() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("undoPNGPredictor() = %v, want %v", got, want)
	}
}

// TestTIFFPredictor tests undoing TIFF horizontal differencing
func TestTIFFPredictor(t *testing.T) {
	// One row, 4 columns, 1 color, stored as deltas.
	data := []byte{10, 5, 5, 5}
	want := []byte{10, 15, 20, 25}

	got, err := undoTIFFPredictor(data, 4, 1)
	if err != nil {
		t.Fatalf("undoTIFFPredictor() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("undoTIFFPredictor() = %v, want %v", got, want)
	}
}

// TestASCIIHexDecode tests hex decoding
func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "48656C6C6F>", "Hello", false},
		{"whitespace", "48 65 6C\n6C 6F>", "Hello", false},
		{"odd digits padded", "48656C6C6F7>", "Hellop", false},
		{"no EOD", "4865", "He", false},
		{"invalid digit", "4G>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ASCIIHexDecode() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ASCIIHexDecode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestASCII85Decode tests base-85 decoding
func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hello", "87cURDZ~>", "Hello"},
		{"zeros shorthand", "z~>", "\x00\x00\x00\x00"},
		{"empty", "~>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("ASCII85Decode(%q) error: %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("ASCII85Decode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestRunLengthDecode tests run-length decoding
func TestRunLengthDecode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"literal run", []byte{2, 'a', 'b', 'c', 128}, "abc"},
		{"repeat run", []byte{254, 'x', 128}, "xxx"},
		{"mixed", []byte{0, 'a', 255, 'b', 128}, "abb"},
		{"empty", []byte{128}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RunLengthDecode(tt.input)
			if err != nil {
				t.Fatalf("RunLengthDecode() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("RunLengthDecode(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
