package document

import (
	"bytes"
	"fmt"
	"os"

	"github.com/tsawler/pdfchunk/core"
	"github.com/tsawler/pdfchunk/resolver"
)

// inheritable attributes flow from page tree nodes down to leaf pages.
var inheritableKeys = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// Open reads a PDF file and materializes every page as an owned,
// self-contained Page. The file is fully loaded and released; the returned
// document keeps no handle on it.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load parses PDF file data into a document.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("not a PDF file: missing %%PDF header")
	}

	xref, err := core.NewXRefParser(data).ParseAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}

	ld := &loader{
		data:  data,
		xref:  xref,
		cache: make(map[int]core.Object),
	}
	res := resolver.NewResolver(ld)

	rootObj, err := res.Resolve(xref.Trailer.Get("Root"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	catalog, ok := rootObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary: %T", rootObj)
	}

	treeObj, err := res.Resolve(catalog.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page tree: %w", err)
	}
	treeRoot, ok := treeObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("page tree root is not a dictionary: %T", treeObj)
	}

	w := &treeWalker{resolver: res, visited: make(map[int]bool)}
	if err := w.walk(treeRoot, core.Dict{}); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}

	doc := &Document{}
	for i, leaf := range w.leaves {
		page, err := materializePage(leaf, res)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", i+1, err)
		}
		doc.pages = append(doc.pages, page)
	}

	return doc, nil
}

// treeWalker flattens the page tree, carrying inherited attributes down to
// the leaves in document order.
type treeWalker struct {
	resolver *resolver.ObjectResolver
	visited  map[int]bool
	leaves   []leafPage
}

type leafPage struct {
	dict      core.Dict
	inherited core.Dict
}

func (w *treeWalker) walk(node core.Dict, inherited core.Dict) error {
	// Merge this node's inheritable attributes over what was passed down.
	merged := make(core.Dict, len(inherited))
	for k, v := range inherited {
		merged[k] = v
	}
	for _, key := range inheritableKeys {
		if v := node.Get(key); v != nil {
			merged[key] = v
		}
	}

	typ, _ := node.GetName("Type")
	if typ == "Page" {
		w.leaves = append(w.leaves, leafPage{dict: node, inherited: merged})
		return nil
	}

	kids, ok := node.GetArray("Kids")
	if !ok {
		// A node with no type but no kids is treated as a leaf; some
		// producers omit /Type on page objects.
		if typ == "" && node.Has("Contents") {
			w.leaves = append(w.leaves, leafPage{dict: node, inherited: merged})
			return nil
		}
		return fmt.Errorf("page tree node has no /Kids")
	}

	for i, kid := range kids {
		if ref, isRef := kid.(core.IndirectRef); isRef {
			if w.visited[ref.Number] {
				continue
			}
			w.visited[ref.Number] = true
		}
		resolved, err := w.resolver.Resolve(kid)
		if err != nil {
			return fmt.Errorf("failed to resolve kid %d: %w", i, err)
		}
		kidDict, ok := resolved.(core.Dict)
		if !ok {
			return fmt.Errorf("kid %d is not a dictionary: %T", i, resolved)
		}
		if err := w.walk(kidDict, merged); err != nil {
			return err
		}
	}
	return nil
}

// materializePage produces an owned page dictionary: inherited attributes
// are filled in, the tree back-reference is dropped, and the whole subtree
// is deep-resolved so nothing points back into the source file.
func materializePage(leaf leafPage, res *resolver.ObjectResolver) (*Page, error) {
	dict := make(core.Dict, len(leaf.dict)+len(leaf.inherited))
	for k, v := range leaf.dict {
		dict[k] = v
	}
	for _, key := range inheritableKeys {
		if _, present := dict[key]; !present {
			if v := leaf.inherited.Get(key); v != nil {
				dict[key] = v
			}
		}
	}
	dict.Delete("Parent")
	// Annotations carry back-references into the page tree and are the
	// least interesting thing to preserve across a split; structure
	// back-references likewise.
	dict.Delete("StructParents")

	resolved, err := res.ResolveDeep(dict)
	if err != nil {
		return nil, err
	}
	owned, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("resolved page is not a dictionary: %T", resolved)
	}
	owned.Set("Type", core.Name("Page"))
	return NewPage(owned), nil
}

// loader reads numbered objects out of the file image, consulting the
// xref table and unpacking object streams on demand.
type loader struct {
	data  []byte
	xref  *core.XRefTable
	cache map[int]core.Object
}

// GetObject returns the object with the given number.
func (l *loader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := l.cache[objNum]; ok {
		return obj, nil
	}

	entry, ok := l.xref.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not in xref table", objNum)
	}
	if !entry.InUse {
		return core.Null{}, nil
	}

	var obj core.Object
	var err error
	if entry.InStream {
		obj, err = l.objectFromStream(entry.StreamNum, objNum)
	} else {
		obj, err = l.objectAtOffset(entry.Offset)
	}
	if err != nil {
		return nil, err
	}

	l.cache[objNum] = obj
	return obj, nil
}

// objectAtOffset parses a regular indirect object at a byte offset.
func (l *loader) objectAtOffset(offset int64) (core.Object, error) {
	if offset < 0 || offset >= int64(len(l.data)) {
		return nil, fmt.Errorf("object offset %d out of range", offset)
	}

	parser := core.NewParser(l.data)
	parser.SetLengthResolver(func(ref core.IndirectRef) (int, bool) {
		obj, err := l.GetObject(ref.Number)
		if err != nil {
			return 0, false
		}
		if n, ok := obj.(core.Int); ok {
			return int(n), true
		}
		return 0, false
	})
	parser.Seek(int(offset))

	indirect, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("parse object at offset %d: %w", offset, err)
	}
	return indirect.Object, nil
}

// objectFromStream extracts a compressed object from its object stream.
func (l *loader) objectFromStream(streamNum, objNum int) (core.Object, error) {
	container, err := l.GetObject(streamNum)
	if err != nil {
		return nil, fmt.Errorf("load object stream %d: %w", streamNum, err)
	}
	stream, ok := container.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", streamNum)
	}

	objStm, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, err
	}
	return objStm.GetObjectByNumber(objNum)
}
