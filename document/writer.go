package document

import (
	"fmt"
	"io"

	"github.com/tsawler/pdfchunk/core"
)

// WriteTo serializes the document as a complete PDF file: header, body
// objects, a classic xref table, and trailer. It implements io.WriterTo.
// Serialization is deterministic, so probing the size of an unchanged
// document twice gives identical results. The document itself is never
// mutated; streams are hoisted into indirect objects on a working copy.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	b := newBodyBuilder()

	catalogRef := b.reserve()
	pagesRef := b.reserve()

	kids := make(core.Array, 0, len(d.pages))
	for _, page := range d.pages {
		pageDict := b.hoist(page.dict).(core.Dict)
		pageDict.Set("Parent", pagesRef)
		kids = append(kids, b.add(pageDict))
	}

	b.fill(catalogRef, core.Dict{
		"Type":  core.Name("Catalog"),
		"Pages": pagesRef,
	})
	b.fill(pagesRef, core.Dict{
		"Type":  core.Name("Pages"),
		"Count": core.Int(len(d.pages)),
		"Kids":  kids,
	})

	return b.emit(w)
}

// bodyBuilder accumulates numbered objects for one serialization pass.
type bodyBuilder struct {
	objects []core.Object // index i holds object number i+1
}

func newBodyBuilder() *bodyBuilder {
	return &bodyBuilder{}
}

// reserve allocates an object number to be filled in later.
func (b *bodyBuilder) reserve() core.IndirectRef {
	b.objects = append(b.objects, nil)
	return core.IndirectRef{Number: len(b.objects)}
}

// add registers an object and returns its reference.
func (b *bodyBuilder) add(obj core.Object) core.IndirectRef {
	b.objects = append(b.objects, obj)
	return core.IndirectRef{Number: len(b.objects)}
}

// fill sets a previously reserved object.
func (b *bodyBuilder) fill(ref core.IndirectRef, obj core.Object) {
	b.objects[ref.Number-1] = obj
}

// hoist walks an object tree and lifts every stream into its own indirect
// object, as PDF requires. Containers are copied on the way down so the
// original page dictionaries stay untouched; stream payloads are shared,
// not copied, since serialization only reads them.
func (b *bodyBuilder) hoist(obj core.Object) core.Object {
	switch o := obj.(type) {
	case core.Dict:
		out := make(core.Dict, len(o))
		for k, v := range o {
			out[k] = b.hoist(v)
		}
		return out
	case core.Array:
		out := make(core.Array, len(o))
		for i, v := range o {
			out[i] = b.hoist(v)
		}
		return out
	case *core.Stream:
		dict := b.hoist(o.Dict).(core.Dict)
		dict.Set("Length", core.Int(len(o.Data)))
		return b.add(&core.Stream{Dict: dict, Data: o.Data})
	default:
		return obj
	}
}

// emit writes the header, all body objects, the xref table, and the
// trailer.
func (b *bodyBuilder) emit(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	// The second comment line carries high bytes so transfer tools treat
	// the file as binary.
	if _, err := fmt.Fprintf(cw, "%%PDF-1.7\n%%\xe2\xe3\xcf\xd3\n"); err != nil {
		return cw.count, err
	}

	offsets := make([]int64, len(b.objects))
	for i, obj := range b.objects {
		offsets[i] = cw.count
		if obj == nil {
			obj = core.Null{}
		}
		if _, err := fmt.Fprintf(cw, "%d 0 obj\n", i+1); err != nil {
			return cw.count, err
		}
		if _, err := cw.Write(core.Serialize(obj)); err != nil {
			return cw.count, err
		}
		if _, err := io.WriteString(cw, "\nendobj\n"); err != nil {
			return cw.count, err
		}
	}

	xrefOffset := cw.count
	if _, err := fmt.Fprintf(cw, "xref\n0 %d\n", len(b.objects)+1); err != nil {
		return cw.count, err
	}
	if _, err := io.WriteString(cw, "0000000000 65535 f \n"); err != nil {
		return cw.count, err
	}
	for _, off := range offsets {
		if _, err := fmt.Fprintf(cw, "%010d 00000 n \n", off); err != nil {
			return cw.count, err
		}
	}

	trailer := core.Dict{
		"Size": core.Int(len(b.objects) + 1),
		"Root": core.IndirectRef{Number: 1},
	}
	if _, err := io.WriteString(cw, "trailer\n"); err != nil {
		return cw.count, err
	}
	if _, err := cw.Write(core.Serialize(trailer)); err != nil {
		return cw.count, err
	}
	if _, err := fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset); err != nil {
		return cw.count, err
	}
	return cw.count, nil
}

// countingWriter tracks how many bytes have been written, for xref
// offsets.
type countingWriter struct {
	w     io.Writer
	count int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)
	return n, err
}
