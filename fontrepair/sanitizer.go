package fontrepair

import (
	"github.com/tsawler/pdfchunk/core"
	"github.com/tsawler/pdfchunk/document"
)

// Descendant subtype tags. A Type0 font must list only CIDFont
// descendants; any other tag in that position marks the font broken.
var (
	cidFontSubtypes = map[core.Name]bool{
		"CIDFontType0": true,
		"CIDFontType2": true,
	}
	fontProgramSubtypes = map[core.Name]bool{
		"Type1C":        true,
		"CIDFontType0C": true,
		"OpenType":      true,
	}
	simpleFontSubtypes = map[core.Name]bool{
		"Type1":    true,
		"TrueType": true,
		"Type3":    true,
		"MMType1":  true,
	}
)

// RemoveBroken deletes every structurally invalid composite font from the
// page's font table and reports how many were removed. The repair is best
// effort and never fails.
func RemoveBroken(page *document.Page) int {
	removed := 0
	for name, font := range page.Fonts() {
		if IsBroken(font) {
			page.RemoveFont(name)
			removed++
		}
	}
	return removed
}

// IsBroken reports whether a font dictionary is a structurally invalid
// composite font. Only Type0 fonts are inspected; anything else passes.
func IsBroken(font core.Dict) bool {
	subtype, ok := font.GetName("Subtype")
	if !ok || subtype != "Type0" {
		return false
	}

	descendants, ok := font.GetArray("DescendantFonts")
	if !ok {
		return true
	}

	for _, entry := range descendants {
		var dict core.Dict
		switch v := entry.(type) {
		case core.Dict:
			dict = v
		case *core.Stream:
			// Stream dictionaries go through the same rules; the
			// filter and length keys give them away.
			dict = v.Dict
		default:
			return true
		}
		if descendantBroken(dict) {
			return true
		}
	}
	return false
}

// descendantBroken evaluates one DescendantFonts entry. Rules are checked
// in order and the first match decides; a valid CIDFont subtype with a
// BaseFont name clears the entry outright.
func descendantBroken(d core.Dict) bool {
	subtype, hasSubtype := d.GetName("Subtype")
	if hasSubtype {
		switch {
		case cidFontSubtypes[subtype]:
			return !d.Has("BaseFont")
		case fontProgramSubtypes[subtype]:
			// A font-program stream wired in where a CIDFont
			// dictionary belongs.
			return true
		case subtype == "Image":
			return true
		case simpleFontSubtypes[subtype]:
			return true
		case subtype == "Type0":
			// No double nesting of composite fonts.
			return true
		}
	}

	if typ, ok := d.GetName("Type"); ok {
		if typ == "Page" || typ == "XObject" {
			return true
		}
	}

	// Document-info keys have no business inside a font descriptor.
	if d.Has("CreationDate") || d.Has("ModDate") || d.Has("Producer") {
		return true
	}

	// Looks like a raw stream dictionary rather than a font.
	if d.Has("Filter") && d.Has("Length") && !d.Has("BaseFont") {
		return true
	}

	if d.Has("DescendantFonts") {
		return true
	}

	if !hasSubtype && !d.Has("CIDSystemInfo") && !d.Has("W") && !d.Has("BaseFont") {
		return true
	}

	return false
}
