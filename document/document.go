package document

import (
	"bytes"
	"fmt"
	"os"
)

// Document is an ordered, mutable collection of pages. A document starts
// empty (New) or holds the pages of a parsed file (Open). Pages are owned:
// appending copies the page, so source and destination never alias.
type Document struct {
	pages []*Page
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns the page at the given index (0-based).
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// AppendPage appends an independent copy of page. Mutating the appended
// copy never affects the original, and vice versa.
func (d *Document) AppendPage(page *Page) {
	d.pages = append(d.pages, page.Clone())
}

// RemoveLastPage removes the most recently appended page.
func (d *Document) RemoveLastPage() {
	if len(d.pages) > 0 {
		d.pages = d.pages[:len(d.pages)-1]
	}
}

// SerializedSize serializes the document to memory and returns the byte
// count. It is a pure probe: the document is not modified, and probing the
// same state twice returns the same value. The cost is proportional to the
// total content size.
func (d *Document) SerializedSize() (int64, error) {
	var buf bytes.Buffer
	n, err := d.WriteTo(&buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Save serializes the document to a file.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize failed: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
