package imaging

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/tsawler/pdfchunk/core"
	"github.com/tsawler/pdfchunk/document"
)

// flateCompress deflates raw sample data the way a Flate image stream
// stores it.
func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// encodeTestJPEG produces a real JPEG stream of a solid-color image.
func encodeTestJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		r, g, b, _ := c.RGBA()
		img.Pix[i*4+0] = byte(r >> 8)
		img.Pix[i*4+1] = byte(g >> 8)
		img.Pix[i*4+2] = byte(b >> 8)
		img.Pix[i*4+3] = 255
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newImageResource builds an image resource backed by a fresh stream.
func newImageResource(filter core.Name, colorSpace core.Object, w, h int, data []byte) *document.ImageResource {
	s := &core.Stream{Dict: core.Dict{
		"Type":             core.Name("XObject"),
		"Subtype":          core.Name("Image"),
		"Filter":           filter,
		"Width":            core.Int(w),
		"Height":           core.Int(h),
		"BitsPerComponent": core.Int(8),
		"ColorSpace":       colorSpace,
	}}
	s.SetData(data)
	return document.NewImageResource("Im0", s)
}

// TestOptimizeShortCircuit tests that an already-small RGB JPEG passes
// through byte-identical
func TestOptimizeShortCircuit(t *testing.T) {
	data := encodeTestJPEG(t, 40, 30, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	img := newImageResource("DCTDecode", core.Name("DeviceRGB"), 40, 30, data)

	opt := NewOptimizer()
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if res.Replaced || res.Skipped {
		t.Errorf("result = %+v, want untouched pass-through", res)
	}
	if !bytes.Equal(img.RawData(), data) {
		t.Error("raw bytes changed on the short-circuit path")
	}
}

// TestOptimizeForce tests that the forced path re-encodes even when
// nothing needed changing
func TestOptimizeForce(t *testing.T) {
	data := encodeTestJPEG(t, 40, 30, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img := newImageResource("DCTDecode", core.Name("DeviceRGB"), 40, 30, data)

	opt := NewOptimizer()
	opt.Force = true
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if !res.Replaced {
		t.Error("forced optimize should replace the payload")
	}
	if img.Kind() != document.FilterDCT {
		t.Errorf("Kind() = %v, want FilterDCT", img.Kind())
	}
}

// TestOptimizeSkipsUnsupported tests that unsupported compression kinds
// are left alone
func TestOptimizeSkipsUnsupported(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	img := newImageResource("CCITTFaxDecode", core.Name("DeviceGray"), 4, 2, data)

	opt := NewOptimizer()
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if !res.Skipped {
		t.Error("unsupported kind should be skipped")
	}
	if !bytes.Equal(img.RawData(), data) {
		t.Error("skipped image was modified")
	}
}

// TestOptimizeResize tests longest-edge capping with aspect preservation
func TestOptimizeResize(t *testing.T) {
	tests := []struct {
		name           string
		srcW, srcH     int
		maxDim         int
		wantW, wantH   int
	}{
		{"landscape", 200, 50, 100, 100, 25},
		{"portrait", 50, 200, 100, 25, 100},
		{"rounding", 333, 100, 100, 100, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, tt.srcW*tt.srcH*3)
			for i := range raw {
				raw[i] = 180
			}
			img := newImageResource("FlateDecode", core.Name("DeviceRGB"),
				tt.srcW, tt.srcH, flateCompress(t, raw))

			opt := NewOptimizer()
			opt.MaxDimension = tt.maxDim
			res, err := opt.Optimize(img)
			if err != nil {
				t.Fatalf("Optimize() error: %v", err)
			}
			if !res.Replaced {
				t.Fatal("resized image should be replaced")
			}
			if img.Width() != tt.wantW || img.Height() != tt.wantH {
				t.Errorf("dimensions = %dx%d, want %dx%d",
					img.Width(), img.Height(), tt.wantW, tt.wantH)
			}
			if img.Kind() != document.FilterDCT {
				t.Errorf("Kind() = %v, want FilterDCT", img.Kind())
			}
		})
	}
}

// TestOptimizeSmallStaysUnscaled tests that images within the cap keep
// their dimensions
func TestOptimizeSmallStaysUnscaled(t *testing.T) {
	raw := make([]byte, 40*30*3)
	img := newImageResource("FlateDecode", core.Name("DeviceRGB"), 40, 30, flateCompress(t, raw))

	opt := NewOptimizer()
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	// Flate input is always re-encoded, but never scaled.
	if !res.Replaced {
		t.Fatal("flate image should be re-encoded as JPEG")
	}
	if img.Width() != 40 || img.Height() != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", img.Width(), img.Height())
	}
}

// Minimal one-block Adobe CMYK JPEG fixtures: 8x8, four components, an
// all-ones quantization table, and DC-only entropy data, so the decoded
// sample values are exact. The first stores inverted ink samples for solid
// cyan under APP14 transform 0; the second stores the same color as YCbCr
// channels plus an inverted K channel under transform 2.
const (
	adobeCMYKTransform0Hex = "ffd8ffee000e41646f626500640000000000ffdb00430001010101010101010101010101" +
		"010101010101010101010101010101010101010101010101010101010101010101010101" +
		"010101010101010101010101010101ffc000140800080008040111000211000311000411" +
		"00ffc400d20000010501010101010100000000000000000102030405060708090a0b1000" +
		"02010303020403050504040000017d010203000411051221314106135161072271143281" +
		"91a1082342b1c11552d1f02433627282090a161718191a25262728292a3435363738393a" +
		"434445464748494a535455565758595a636465666768696a737475767778797a83848586" +
		"8788898a92939495969798999aa2a3a4a5a6a7a8a9aab2b3b4b5b6b7b8b9bac2c3c4c5c6" +
		"c7c8c9cad2d3d4d5d6d7d8d9dae1e2e3e4e5e6e7e8e9eaf1f2f3f4f5f6f7f8f9faffda00" +
		"0e040100020003000400003f00ff003ffafefe2bfbf8afefe2bfffd9"

	adobeYCCKTransform2Hex = "ffd8ffee000e41646f626500640000000002ffdb00430001010101010101010101010101" +
		"010101010101010101010101010101010101010101010101010101010101010101010101" +
		"010101010101010101010101010101ffc000140800080008040111000211000311000411" +
		"00ffc400d20000010501010101010100000000000000000102030405060708090a0b1000" +
		"02010303020403050504040000017d010203000411051221314106135161072271143281" +
		"91a1082342b1c11552d1f02433627282090a161718191a25262728292a3435363738393a" +
		"434445464748494a535455565758595a636465666768696a737475767778797a83848586" +
		"8788898a92939495969798999aa2a3a4a5a6a7a8a9aab2b3b4b5b6b7b8b9bac2c3c4c5c6" +
		"c7c8c9cad2d3d4d5d6d7d8d9dae1e2e3e4e5e6e7e8e9eaf1f2f3f4f5f6f7f8f9faffda00" +
		"0e040100020003000400003f00fd98afd58aff003ffafefe2bffd9"
)

// TestOptimizeAdobeCMYKJPEG tests that Adobe-marked CMYK JPEG streams come
// out as the right RGB color. image/jpeg restores the inverted samples
// while decoding, so the pipeline must not invert them again.
func TestOptimizeAdobeCMYKJPEG(t *testing.T) {
	tests := []struct {
		name    string
		hexData string
	}{
		{"transform 0 CMYK", adobeCMYKTransform0Hex},
		{"transform 2 YCCK", adobeYCCKTransform2Hex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.hexData)
			if err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			if !needsInversion(data) {
				t.Fatal("fixture carries no Adobe inversion marker")
			}
			img := newImageResource("DCTDecode", core.Name("DeviceCMYK"), 8, 8, data)

			opt := NewOptimizer()
			res, err := opt.Optimize(img)
			if err != nil {
				t.Fatalf("Optimize() error: %v", err)
			}
			if !res.Replaced || res.Mode != "DeviceRGB" {
				t.Fatalf("result = %+v, want DeviceRGB replacement", res)
			}

			decoded, err := jpeg.Decode(bytes.NewReader(img.RawData()))
			if err != nil {
				t.Fatalf("decoding replaced payload: %v", err)
			}
			r, g, b, _ := decoded.At(4, 4).RGBA()
			if r>>8 > 40 || g>>8 < 215 || b>>8 < 215 {
				t.Errorf("center pixel = (%d, %d, %d), want close to cyan (0, 255, 255)",
					r>>8, g>>8, b>>8)
			}
		})
	}
}

// TestOptimizeCMYKConverts tests that CMYK samples come out as RGB
func TestOptimizeCMYKConverts(t *testing.T) {
	// Solid pure cyan.
	raw := make([]byte, 8*8*4)
	for i := 0; i < 8*8; i++ {
		raw[i*4+0] = 255
	}
	img := newImageResource("FlateDecode", core.Name("DeviceCMYK"), 8, 8, flateCompress(t, raw))

	opt := NewOptimizer()
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if !res.Replaced || res.Mode != "DeviceRGB" {
		t.Fatalf("result = %+v, want DeviceRGB replacement", res)
	}
	if img.ColorSpaceName() != "DeviceRGB" {
		t.Errorf("ColorSpaceName() = %q, want DeviceRGB", img.ColorSpaceName())
	}

	decoded, err := jpeg.Decode(bytes.NewReader(img.RawData()))
	if err != nil {
		t.Fatalf("decoding replaced payload: %v", err)
	}
	r, g, b, _ := decoded.At(4, 4).RGBA()
	if r>>8 > 30 || g>>8 < 220 || b>>8 < 220 {
		t.Errorf("center pixel = (%d, %d, %d), want close to cyan (0, 255, 255)",
			r>>8, g>>8, b>>8)
	}
}

// TestOptimizePaletteFlattens tests that indexed images are expanded and
// re-encoded
func TestOptimizePaletteFlattens(t *testing.T) {
	lookup := []byte{255, 0, 0, 0, 0, 255} // red, blue
	cs := core.Array{core.Name("Indexed"), core.Name("DeviceRGB"), core.Int(1), core.String(lookup)}

	idx := make([]byte, 8*8)
	for i := range idx {
		idx[i] = 1 // all blue
	}
	img := newImageResource("FlateDecode", cs, 8, 8, flateCompress(t, idx))

	opt := NewOptimizer()
	res, err := opt.Optimize(img)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if !res.Replaced {
		t.Fatal("indexed image should be replaced")
	}

	decoded, err := jpeg.Decode(bytes.NewReader(img.RawData()))
	if err != nil {
		t.Fatalf("decoding replaced payload: %v", err)
	}
	r, g, b, _ := decoded.At(4, 4).RGBA()
	if b>>8 < 220 || r>>8 > 30 || g>>8 > 30 {
		t.Errorf("center pixel = (%d, %d, %d), want close to blue", r>>8, g>>8, b>>8)
	}
}

// TestOptimizePageIsolatesFailures tests that one broken image does not
// stop the others
func TestOptimizePageIsolatesFailures(t *testing.T) {
	good := encodeTestJPEG(t, 20, 20, color.RGBA{R: 5, G: 5, B: 5, A: 255})

	goodStream := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"), "Filter": core.Name("DCTDecode"),
		"Width": core.Int(20), "Height": core.Int(20),
		"BitsPerComponent": core.Int(8), "ColorSpace": core.Name("DeviceRGB"),
	}}
	goodStream.SetData(good)

	badStream := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"), "Filter": core.Name("DCTDecode"),
		"Width": core.Int(10), "Height": core.Int(10),
		"BitsPerComponent": core.Int(8), "ColorSpace": core.Name("DeviceRGB"),
	}}
	badStream.SetData([]byte("definitely not a jpeg"))

	page := document.NewPage(core.Dict{
		"Type": core.Name("Page"),
		"Resources": core.Dict{
			"XObject": core.Dict{"ImBad": badStream, "ImGood": goodStream},
		},
	})

	opt := NewOptimizer()
	opt.Force = true
	results := opt.OptimizePage(page)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if byName["ImBad"].Err == nil {
		t.Error("broken image should record an error")
	}
	if byName["ImGood"].Err != nil {
		t.Errorf("good image failed: %v", byName["ImGood"].Err)
	}
	if !byName["ImGood"].Replaced {
		t.Error("good image should still be processed")
	}
}
