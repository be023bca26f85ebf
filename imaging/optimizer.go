package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/tsawler/pdfchunk/document"
)

// Defaults for the recompression fallback.
const (
	DefaultQuality      = 75
	DefaultMaxDimension = 1500
)

// Optimizer recompresses embedded page images: CMYK streams are converted
// to RGB, oversized images are scaled down, transparency is flattened
// onto white, and the result is re-encoded as JPEG.
type Optimizer struct {
	// Quality is the lossy JPEG encode quality.
	Quality int

	// MaxDimension caps the longer image edge in pixels.
	MaxDimension int

	// Force re-encodes even when no transformation was needed. The
	// splitter's fallback path sets this; the default path skips
	// untouched JPEGs to avoid generation loss.
	Force bool
}

// NewOptimizer returns an optimizer with the default tuning.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		Quality:      DefaultQuality,
		MaxDimension: DefaultMaxDimension,
	}
}

// Result describes what happened to one image resource.
type Result struct {
	Name     string
	Replaced bool   // payload was rewritten
	Skipped  bool   // unsupported compression kind, left untouched
	Width    int    // final width
	Height   int    // final height
	Mode     string // final color mode
	Err      error  // per-image failure; the resource was left unmodified
}

// OptimizePage runs the optimizer over every image on a page. A failure on
// one image is recorded in its result and does not stop the remaining
// images from being processed.
func (o *Optimizer) OptimizePage(page *document.Page) []Result {
	images := page.Images()
	results := make([]Result, 0, len(images))
	for _, img := range images {
		res, err := o.Optimize(img)
		res.Name = img.Name
		if err != nil {
			res.Err = fmt.Errorf("image %s: %w", img.Name, err)
		}
		results = append(results, res)
	}
	return results
}

// Optimize transforms a single image resource in place. Resources whose
// compression kind is neither DCTDecode nor FlateDecode are not safe to
// reinterpret and are skipped. An untouched JPEG is returned byte-identical
// unless Force is set.
func (o *Optimizer) Optimize(img *document.ImageResource) (Result, error) {
	kind := img.Kind()
	if kind != document.FilterDCT && kind != document.FilterFlate {
		return Result{
			Skipped: true,
			Width:   img.Width(),
			Height:  img.Height(),
			Mode:    img.ColorSpaceName(),
		}, nil
	}

	decoded, err := decodeImage(img)
	if err != nil {
		return Result{}, err
	}

	modified := false

	// CMYK is always converted to RGB. Adobe-encoded JPEG streams store
	// inverted ink values, but image/jpeg already restores the standard
	// convention while decoding, so the samples arrive ready to convert.
	if cm, ok := decoded.(*image.CMYK); ok {
		decoded = cmykToRGB(cm)
		modified = true
	}

	// Cap the longer edge, preserving aspect ratio.
	if resized, did := o.resize(decoded); did {
		decoded = resized
		modified = true
	}

	// Normalize the pixel mode to RGB, flattening alpha and palette
	// modes onto a white background.
	if normalized, did := normalizeMode(decoded); did {
		decoded = normalized
		modified = true
	}

	if !modified && kind == document.FilterDCT && !o.Force {
		return Result{
			Width:  img.Width(),
			Height: img.Height(),
			Mode:   img.ColorSpaceName(),
		}, nil
	}

	encoded, err := o.encodeJPEG(decoded)
	if err != nil {
		return Result{}, fmt.Errorf("jpeg encode failed: %w", err)
	}

	// Carry over an embedded color profile from the source stream.
	if kind == document.FilterDCT {
		if icc := ExtractICCProfile(img.RawData()); icc != nil {
			encoded = SpliceICCProfile(encoded, icc)
		}
	}

	bounds := decoded.Bounds()
	img.Replace(encoded, bounds.Dx(), bounds.Dy())

	return Result{
		Replaced: true,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Mode:     "DeviceRGB",
	}, nil
}

// resize scales the image down so its longer edge equals MaxDimension,
// rounding to the nearest pixel. Images already within the cap are
// returned unchanged.
func (o *Optimizer) resize(src image.Image) (image.Image, bool) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if o.MaxDimension <= 0 || longer <= o.MaxDimension {
		return src, false
	}

	scale := float64(o.MaxDimension) / float64(longer)
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst, true
}

// normalizeMode coerces the pixel buffer to an RGB-equivalent mode.
// Alpha-carrying and palette modes are composited over opaque white using
// their alpha as the mask; other non-RGB modes are converted directly.
// YCbCr and opaque RGBA buffers already are RGB-equivalent.
func normalizeMode(src image.Image) (image.Image, bool) {
	switch v := src.(type) {
	case *image.YCbCr:
		return src, false
	case *image.RGBA:
		if v.Opaque() {
			return src, false
		}
		return flattenOnWhite(src), true
	case *image.NRGBA, *image.NRGBA64, *image.RGBA64, *image.Paletted:
		return flattenOnWhite(src), true
	default:
		// Gray and anything else becomes plain RGB.
		return flattenOnWhite(src), true
	}
}

// flattenOnWhite composites src over an opaque white background.
func flattenOnWhite(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	stddraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)
	stddraw.Draw(dst, dst.Bounds(), src, bounds.Min, stddraw.Over)
	return dst
}

// cmykToRGB converts a CMYK buffer to opaque RGB.
func cmykToRGB(src *image.CMYK) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		r, g, b := color.CMYKToRGB(src.Pix[i*4], src.Pix[i*4+1], src.Pix[i*4+2], src.Pix[i*4+3])
		dst.Pix[i*4+0] = r
		dst.Pix[i*4+1] = g
		dst.Pix[i*4+2] = b
		dst.Pix[i*4+3] = 255
	}
	return dst
}

// encodeJPEG re-encodes the pixel buffer as a lossy JPEG stream.
func (o *Optimizer) encodeJPEG(img image.Image) ([]byte, error) {
	quality := o.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
