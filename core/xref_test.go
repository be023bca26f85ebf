package core

import (
	"fmt"
	"strings"
	"testing"
)

// buildClassicXRef builds a minimal file tail holding one classic xref
// table. Offsets inside the entries are arbitrary; only the table itself
// is parsed.
func buildClassicXRef(prev string) string {
	var sb strings.Builder
	sb.WriteString("%PDF-1.7\n")
	sb.WriteString("filler filler filler\n")
	start := sb.Len()
	sb.WriteString("xref\n")
	sb.WriteString("0 3\n")
	sb.WriteString("0000000000 65535 f \n")
	sb.WriteString("0000000015 00000 n \n")
	sb.WriteString("0000000120 00000 n \n")
	sb.WriteString("trailer\n")
	sb.WriteString("<< /Size 3 /Root 1 0 R")
	if prev != "" {
		sb.WriteString(" " + prev)
	}
	sb.WriteString(" >>\n")
	sb.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", start))
	return sb.String()
}

// TestFindStartXRef tests locating the startxref pointer
func TestFindStartXRef(t *testing.T) {
	data := buildClassicXRef("")
	p := NewXRefParser([]byte(data))

	offset, err := p.FindStartXRef()
	if err != nil {
		t.Fatalf("FindStartXRef() error: %v", err)
	}
	if got := data[offset : offset+4]; got != "xref" {
		t.Errorf("startxref points at %q, want the xref keyword", got)
	}
}

// TestFindStartXRefMissing tests failure when no startxref exists
func TestFindStartXRefMissing(t *testing.T) {
	p := NewXRefParser([]byte("%PDF-1.7\nno pointer here\n"))
	if _, err := p.FindStartXRef(); err == nil {
		t.Error("FindStartXRef() expected error, got nil")
	}
}

// TestParseClassicTable tests parsing a classic xref table and trailer
func TestParseClassicTable(t *testing.T) {
	data := buildClassicXRef("")
	p := NewXRefParser([]byte(data))

	table, err := p.ParseAll()
	if err != nil {
		t.Fatalf("ParseAll() error: %v", err)
	}

	if table.Size() != 3 {
		t.Errorf("Size() = %d, want 3", table.Size())
	}

	e0, ok := table.Get(0)
	if !ok || e0.InUse {
		t.Errorf("object 0 = %+v, want free entry", e0)
	}

	e1, ok := table.Get(1)
	if !ok {
		t.Fatal("object 1 missing")
	}
	if !e1.InUse || e1.Offset != 15 || e1.Generation != 0 {
		t.Errorf("object 1 = %+v, want in-use at offset 15", e1)
	}

	if root, ok := table.Trailer.GetIndirectRef("Root"); !ok || root.Number != 1 {
		t.Errorf("trailer Root = %v, want 1 0 R", root)
	}
}

// TestParseAllPrevChain tests that entries from older sections are kept
// only when not shadowed by newer ones
func TestParseAllPrevChain(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("%PDF-1.7\n")

	oldStart := sb.Len()
	sb.WriteString("xref\n0 2\n")
	sb.WriteString("0000000000 65535 f \n")
	sb.WriteString("0000000100 00000 n \n")
	sb.WriteString("trailer\n<< /Size 2 /Root 1 0 R >>\n")

	newStart := sb.Len()
	sb.WriteString("xref\n1 1\n")
	sb.WriteString("0000000200 00000 n \n")
	sb.WriteString(fmt.Sprintf("trailer\n<< /Size 2 /Root 1 0 R /Prev %d >>\n", oldStart))

	sb.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", newStart))

	p := NewXRefParser([]byte(sb.String()))
	table, err := p.ParseAll()
	if err != nil {
		t.Fatalf("ParseAll() error: %v", err)
	}

	e1, ok := table.Get(1)
	if !ok {
		t.Fatal("object 1 missing")
	}
	if e1.Offset != 200 {
		t.Errorf("object 1 offset = %d, want 200 (newer section wins)", e1.Offset)
	}
	if _, ok := table.Get(0); !ok {
		t.Error("object 0 from the older section missing")
	}
}
