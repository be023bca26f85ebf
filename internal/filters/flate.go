package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, and BitsPerComponent.
type Params map[string]interface{}

// FlateDecode decompresses Flate (zlib/deflate) compressed data.
// This is the most common compression filter in PDFs. It optionally applies
// a predictor algorithm used for image and xref-stream data.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	decompressed := buf.Bytes()

	predictor := getIntParam(params, "Predictor", 1)
	if predictor == 1 {
		return decompressed, nil
	}

	out, err := undoPredictor(decompressed, predictor, params)
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return out, nil
}

// FlateEncode compresses data with zlib at the default compression level.
// Used when serializing streams that declare FlateDecode.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close failed: %w", err)
	}
	return buf.Bytes(), nil
}

// undoPredictor reverses the prediction applied before compression.
// Predictor 2 is TIFF horizontal differencing; 10-15 are the PNG filters,
// where each row carries its own filter-type byte.
func undoPredictor(data []byte, predictor int, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)

	if bpc != 8 {
		return nil, fmt.Errorf("predictors support 8 bits per component only, got %d", bpc)
	}

	if predictor == 2 {
		return undoTIFFPredictor(data, columns, colors)
	}
	if predictor >= 10 && predictor <= 15 {
		return undoPNGPredictor(data, columns, colors)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", predictor)
}

// undoTIFFPredictor reverses TIFF Predictor 2, which differences each
// sample against the sample to its left.
func undoTIFFPredictor(data []byte, columns, colors int) ([]byte, error) {
	rowSize := columns * colors
	if rowSize == 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row < len(data)/rowSize; row++ {
		start := row * rowSize
		for i := colors; i < rowSize; i++ {
			out[start+i] += out[start+i-colors]
		}
	}
	return out, nil
}

// undoPNGPredictor reverses the PNG row filters (None, Sub, Up, Average,
// Paeth). Each input row starts with a filter-type byte.
func undoPNGPredictor(data []byte, columns, colors int) ([]byte, error) {
	rowSize := columns * colors
	if rowSize == 0 || len(data)%(rowSize+1) != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize+1)
	}

	numRows := len(data) / (rowSize + 1)
	out := make([]byte, 0, numRows*rowSize)
	prev := make([]byte, rowSize)
	bpp := colors

	for row := 0; row < numRows; row++ {
		in := data[row*(rowSize+1):]
		filter := in[0]
		cur := make([]byte, rowSize)
		copy(cur, in[1:rowSize+1])

		switch filter {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowSize; i++ {
				cur[i] += cur[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowSize; i++ {
				cur[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowSize; i++ {
				var left byte
				if i >= bpp {
					left = cur[i-bpp]
				}
				cur[i] += byte((int(left) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowSize; i++ {
				var left, upLeft byte
				if i >= bpp {
					left = cur[i-bpp]
					upLeft = prev[i-bpp]
				}
				cur[i] += paethPredictor(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filter, row)
		}

		out = append(out, cur...)
		prev = cur
	}

	return out, nil
}

// paethPredictor selects the neighbor (left, above, or upper-left) closest
// to the linear prediction, per the PNG specification.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// getIntParam extracts an integer parameter from Params, returning
// defaultValue if the parameter is missing or not an integer.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	obj, ok := params[key]
	if !ok {
		return defaultValue
	}
	if v, ok := obj.(int); ok {
		return v
	}
	return defaultValue
}
