// Package fontrepair removes structurally invalid composite fonts from a
// page's resource table.
//
// Malformed PDFs sometimes wire arbitrary objects (pages, images, raw
// streams, or simple fonts) into the DescendantFonts array of a Type0
// font, which breaks downstream consumers. The sanitizer inspects each
// Type0 font's descendants against a fixed rule set and deletes fonts
// that cannot be valid. Removal is best effort: a page that loses a font
// entry renders with substituted glyphs rather than failing outright.
package fontrepair
