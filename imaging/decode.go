package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/tsawler/pdfchunk/document"
)

// decodeImage produces a pixel buffer from an image resource. DCTDecode
// data goes through the JPEG codec; Flate and unfiltered data are raw
// samples reconstructed according to the resource's color space and bit
// depth.
func decodeImage(img *document.ImageResource) (image.Image, error) {
	switch img.Kind() {
	case document.FilterDCT:
		decoded, err := jpeg.Decode(bytes.NewReader(img.RawData()))
		if err != nil {
			return nil, fmt.Errorf("jpeg decode failed: %w", err)
		}
		return decoded, nil

	case document.FilterFlate, document.FilterNone:
		data, err := img.DecodedData()
		if err != nil {
			return nil, err
		}
		return rawToImage(img, data)

	default:
		return nil, fmt.Errorf("unsupported compression kind %s", img.Kind())
	}
}

// rawToImage reconstructs a pixel buffer from raw sample data.
func rawToImage(img *document.ImageResource, data []byte) (image.Image, error) {
	width, height := img.Width(), img.Height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	if lookup, base, hival, ok := img.Palette(); ok {
		return paletteToImage(data, lookup, base, hival, width, height, img.BitsPerComponent())
	}

	cs := img.ColorSpaceName()
	bpc := img.BitsPerComponent()

	switch cs {
	case "DeviceGray", "CalGray":
		return grayToImage(data, width, height, bpc)
	case "DeviceRGB", "CalRGB":
		return rgbToImage(data, width, height, bpc)
	case "DeviceCMYK":
		return cmykToImage(data, width, height, bpc)
	case "ICCBased":
		// The profile's component count is not tracked; infer it from
		// the data size.
		switch components(data, width, height) {
		case 1:
			return grayToImage(data, width, height, bpc)
		case 4:
			return cmykToImage(data, width, height, bpc)
		default:
			return rgbToImage(data, width, height, bpc)
		}
	default:
		return nil, fmt.Errorf("unsupported color space %s", cs)
	}
}

func components(data []byte, width, height int) int {
	if width*height == 0 {
		return 3
	}
	return len(data) / (width * height)
}

// grayToImage converts 1-, 4-, or 8-bit grayscale samples to image.Gray.
func grayToImage(data []byte, width, height, bpc int) (*image.Gray, error) {
	out := image.NewGray(image.Rect(0, 0, width, height))

	switch bpc {
	case 8:
		expected := width * height
		if len(data) < expected {
			return nil, fmt.Errorf("insufficient gray data: got %d, expected %d", len(data), expected)
		}
		copy(out.Pix, data[:expected])
		return out, nil

	case 1:
		bytesPerRow := (width + 7) / 8
		if len(data) < bytesPerRow*height {
			return nil, fmt.Errorf("insufficient 1-bit data: got %d, expected %d", len(data), bytesPerRow*height)
		}
		for y := 0; y < height; y++ {
			row := data[y*bytesPerRow:]
			for x := 0; x < width; x++ {
				bit := (row[x/8] >> (7 - x%8)) & 1
				out.Pix[y*width+x] = bit * 255
			}
		}
		return out, nil

	case 4:
		bytesPerRow := (width + 1) / 2
		if len(data) < bytesPerRow*height {
			return nil, fmt.Errorf("insufficient 4-bit data: got %d, expected %d", len(data), bytesPerRow*height)
		}
		for y := 0; y < height; y++ {
			row := data[y*bytesPerRow:]
			for x := 0; x < width; x++ {
				var nibble byte
				if x%2 == 0 {
					nibble = row[x/2] >> 4
				} else {
					nibble = row[x/2] & 0x0f
				}
				out.Pix[y*width+x] = nibble * 17
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported gray bit depth: %d", bpc)
	}
}

// rgbToImage converts packed 8-bit RGB samples to an opaque image.RGBA.
func rgbToImage(data []byte, width, height, bpc int) (*image.RGBA, error) {
	if bpc != 8 {
		return nil, fmt.Errorf("unsupported RGB bit depth: %d", bpc)
	}
	expected := width * height * 3
	if len(data) < expected {
		return nil, fmt.Errorf("insufficient RGB data: got %d, expected %d", len(data), expected)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		out.Pix[i*4+0] = data[i*3+0]
		out.Pix[i*4+1] = data[i*3+1]
		out.Pix[i*4+2] = data[i*3+2]
		out.Pix[i*4+3] = 255
	}
	return out, nil
}

// cmykToImage converts packed 8-bit CMYK samples to image.CMYK.
func cmykToImage(data []byte, width, height, bpc int) (*image.CMYK, error) {
	if bpc != 8 {
		return nil, fmt.Errorf("unsupported CMYK bit depth: %d", bpc)
	}
	expected := width * height * 4
	if len(data) < expected {
		return nil, fmt.Errorf("insufficient CMYK data: got %d, expected %d", len(data), expected)
	}

	out := image.NewCMYK(image.Rect(0, 0, width, height))
	copy(out.Pix, data[:expected])
	return out, nil
}

// paletteToImage expands Indexed samples through a palette lookup table.
func paletteToImage(data, lookup []byte, base string, hival, width, height, bpc int) (image.Image, error) {
	var perEntry int
	switch base {
	case "DeviceGray", "CalGray":
		perEntry = 1
	case "DeviceRGB", "CalRGB", "ICCBased":
		perEntry = 3
	case "DeviceCMYK":
		perEntry = 4
	default:
		return nil, fmt.Errorf("unsupported palette base %s", base)
	}

	palette := make(color.Palette, 0, hival+1)
	for i := 0; i <= hival; i++ {
		off := i * perEntry
		if off+perEntry > len(lookup) {
			break
		}
		switch perEntry {
		case 1:
			palette = append(palette, color.Gray{Y: lookup[off]})
		case 3:
			palette = append(palette, color.RGBA{R: lookup[off], G: lookup[off+1], B: lookup[off+2], A: 255})
		case 4:
			palette = append(palette, color.CMYK{C: lookup[off], M: lookup[off+1], Y: lookup[off+2], K: lookup[off+3]})
		}
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}

	out := image.NewPaletted(image.Rect(0, 0, width, height), palette)

	switch bpc {
	case 8:
		expected := width * height
		if len(data) < expected {
			return nil, fmt.Errorf("insufficient indexed data: got %d, expected %d", len(data), expected)
		}
		copy(out.Pix, data[:expected])
	case 4, 2, 1:
		perByte := 8 / bpc
		mask := byte(1<<bpc - 1)
		bytesPerRow := (width + perByte - 1) / perByte
		if len(data) < bytesPerRow*height {
			return nil, fmt.Errorf("insufficient indexed data: got %d, expected %d", len(data), bytesPerRow*height)
		}
		for y := 0; y < height; y++ {
			row := data[y*bytesPerRow:]
			for x := 0; x < width; x++ {
				shift := uint(8 - bpc - (x%perByte)*bpc)
				out.Pix[y*width+x] = (row[x/perByte] >> shift) & mask
			}
		}
	default:
		return nil, fmt.Errorf("unsupported indexed bit depth: %d", bpc)
	}

	// Clamp indexes beyond the palette to the last entry rather than
	// letting image.Paletted panic later.
	limit := byte(len(palette) - 1)
	for i, p := range out.Pix {
		if p > limit {
			out.Pix[i] = limit
		}
	}
	return out, nil
}
