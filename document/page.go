package document

import (
	"fmt"
	"sort"

	"github.com/tsawler/pdfchunk/core"
)

// Page is one page of a document, held as a fully materialized dictionary
// with no indirect references. Every page owns its resource subtree, so
// mutating a page in one document never affects a page in another.
type Page struct {
	dict core.Dict
}

// NewPage wraps a self-contained page dictionary.
func NewPage(dict core.Dict) *Page {
	return &Page{dict: dict}
}

// Dict returns the underlying page dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// Clone returns an independent deep copy of the page.
func (p *Page) Clone() *Page {
	return &Page{dict: core.Clone(p.dict).(core.Dict)}
}

// resources returns the page's resource dictionary, or nil.
func (p *Page) resources() core.Dict {
	res, _ := p.dict.GetDict("Resources")
	return res
}

// Images returns the page's image XObjects in name order. Form XObjects
// and other non-image entries are skipped.
func (p *Page) Images() []*ImageResource {
	res := p.resources()
	if res == nil {
		return nil
	}
	xobjects, ok := res.GetDict("XObject")
	if !ok {
		return nil
	}

	names := xobjects.Keys()
	sort.Strings(names)

	var images []*ImageResource
	for _, name := range names {
		stream, ok := xobjects.Get(name).(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		images = append(images, &ImageResource{Name: name, stream: stream})
	}
	return images
}

// Fonts returns the page's font resource table as a map of resource name
// to font dictionary.
func (p *Page) Fonts() map[string]core.Dict {
	res := p.resources()
	if res == nil {
		return nil
	}
	fontDict, ok := res.GetDict("Font")
	if !ok {
		return nil
	}

	fonts := make(map[string]core.Dict, len(fontDict))
	for name, obj := range fontDict {
		if d, ok := obj.(core.Dict); ok {
			fonts[name] = d
		}
	}
	return fonts
}

// RemoveFont deletes a font resource from the page's font table.
func (p *Page) RemoveFont(name string) {
	res := p.resources()
	if res == nil {
		return
	}
	if fontDict, ok := res.GetDict("Font"); ok {
		fontDict.Delete(name)
	}
}

// FilterKind classifies an image resource's compression.
type FilterKind int

const (
	// FilterUnsupported covers compression kinds the optimizer must not
	// reinterpret (JPXDecode, JBIG2Decode, CCITTFaxDecode, ...).
	FilterUnsupported FilterKind = iota
	// FilterDCT is DCTDecode (JPEG) compression.
	FilterDCT
	// FilterFlate is FlateDecode (deflate) compression.
	FilterFlate
	// FilterNone means the stream data is raw pixels with no filter.
	FilterNone
)

// String returns a human-readable representation of the filter kind.
func (k FilterKind) String() string {
	switch k {
	case FilterDCT:
		return "DCTDecode"
	case FilterFlate:
		return "FlateDecode"
	case FilterNone:
		return "none"
	default:
		return "unsupported"
	}
}

// ImageResource is one embedded image XObject, owned by its page.
type ImageResource struct {
	Name   string
	stream *core.Stream
}

// NewImageResource wraps a raw image stream. Most callers get resources
// from Page.Images instead.
func NewImageResource(name string, stream *core.Stream) *ImageResource {
	return &ImageResource{Name: name, stream: stream}
}

// RawData returns the image's compressed byte stream as stored.
func (img *ImageResource) RawData() []byte {
	return img.stream.Data
}

// Kind returns the image's compression kind.
func (img *ImageResource) Kind() FilterKind {
	switch img.stream.FilterName() {
	case "DCTDecode", "DCT":
		return FilterDCT
	case "FlateDecode", "Fl":
		return FilterFlate
	case "":
		return FilterNone
	default:
		return FilterUnsupported
	}
}

// Width returns the image width in pixels.
func (img *ImageResource) Width() int {
	w, _ := img.stream.Dict.GetInt("Width")
	return int(w)
}

// Height returns the image height in pixels.
func (img *ImageResource) Height() int {
	h, _ := img.stream.Dict.GetInt("Height")
	return int(h)
}

// BitsPerComponent returns the image bit depth, defaulting to 8.
func (img *ImageResource) BitsPerComponent() int {
	if bpc, ok := img.stream.Dict.GetInt("BitsPerComponent"); ok {
		return int(bpc)
	}
	return 8
}

// ColorSpace returns the image's color space object, which may be a name
// (DeviceRGB, DeviceCMYK, ...) or an array form like Indexed or ICCBased.
func (img *ImageResource) ColorSpace() core.Object {
	return img.stream.Dict.Get("ColorSpace")
}

// ColorSpaceName returns the name of the image's color space, following
// Indexed color spaces to their base.
func (img *ImageResource) ColorSpaceName() string {
	return colorSpaceName(img.ColorSpace())
}

func colorSpaceName(obj core.Object) string {
	switch v := obj.(type) {
	case core.Name:
		return string(v)
	case core.Array:
		if len(v) > 0 {
			if name, ok := v[0].(core.Name); ok {
				if name == "Indexed" && len(v) > 1 {
					return "Indexed"
				}
				return string(name)
			}
		}
	}
	return "DeviceGray"
}

// DecodedData returns the image payload with stream filters undone. For
// DCTDecode this is still a JPEG byte stream; for FlateDecode it is raw
// pixel data.
func (img *ImageResource) DecodedData() ([]byte, error) {
	data, err := img.stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	return data, nil
}

// Palette returns the lookup table of an Indexed color space image along
// with the base color space name and the highest valid index, or ok=false
// when the image is not palette-based.
func (img *ImageResource) Palette() (lookup []byte, base string, hival int, ok bool) {
	arr, isArr := img.ColorSpace().(core.Array)
	if !isArr || len(arr) < 4 {
		return nil, "", 0, false
	}
	if name, _ := arr[0].(core.Name); name != "Indexed" {
		return nil, "", 0, false
	}

	base = colorSpaceName(arr[1])
	if hi, isInt := arr[2].(core.Int); isInt {
		hival = int(hi)
	}

	switch table := arr[3].(type) {
	case core.String:
		lookup = []byte(table)
	case *core.Stream:
		decoded, err := table.Decode()
		if err != nil {
			return nil, "", 0, false
		}
		lookup = decoded
	default:
		return nil, "", 0, false
	}
	return lookup, base, hival, true
}

// Replace overwrites the image with a new JPEG payload, updating the
// dimensions, compression kind, color space, and bit depth, and dropping
// decode-parameter metadata that no longer applies after conversion.
func (img *ImageResource) Replace(jpegData []byte, width, height int) {
	img.stream.SetData(jpegData)
	img.stream.Dict.Set("Width", core.Int(width))
	img.stream.Dict.Set("Height", core.Int(height))
	img.stream.Dict.Set("Filter", core.Name("DCTDecode"))
	img.stream.Dict.Set("ColorSpace", core.Name("DeviceRGB"))
	img.stream.Dict.Set("BitsPerComponent", core.Int(8))
	img.stream.Dict.Delete("Decode")
	img.stream.Dict.Delete("DecodeParms")
}
