package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// XRefEntry describes where one object lives.
type XRefEntry struct {
	Offset     int64 // byte offset for regular objects
	Generation int
	InUse      bool
	InStream   bool // object lives inside an object stream
	StreamNum  int  // object number of the containing object stream
	StreamIdx  int  // index within the object stream
}

// XRefTable maps object numbers to their locations.
type XRefTable struct {
	entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable creates an empty cross-reference table.
func NewXRefTable() *XRefTable {
	return &XRefTable{entries: make(map[int]*XRefEntry)}
}

// Get returns the entry for an object number.
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	e, ok := x.entries[objNum]
	return e, ok
}

// Set stores an entry for an object number.
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.entries[objNum] = entry
}

// Size returns the number of entries.
func (x *XRefTable) Size() int {
	return len(x.entries)
}

// XRefParser parses cross-reference data out of a PDF file image. It
// understands both classic xref tables and PDF 1.5 xref streams, and
// follows Prev/XRefStm chains so incremental updates resolve correctly.
type XRefParser struct {
	data []byte
}

// NewXRefParser creates a parser over the full file contents.
func NewXRefParser(data []byte) *XRefParser {
	return &XRefParser{data: data}
}

// FindStartXRef locates the startxref offset near the end of the file.
func (x *XRefParser) FindStartXRef() (int64, error) {
	tailLen := 1024
	if tailLen > len(x.data) {
		tailLen = len(x.data)
	}
	tail := x.data[len(x.data)-tailLen:]

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	rest := tail[idx+len("startxref"):]
	fields := bytes.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref has no offset")
	}

	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	if offset < 0 || offset >= int64(len(x.data)) {
		return 0, fmt.Errorf("startxref offset %d out of range", offset)
	}
	return offset, nil
}

// ParseAll parses the complete cross-reference chain starting from the
// startxref offset. Entries from newer sections win over older ones and
// the newest trailer is kept.
func (x *XRefParser) ParseAll() (*XRefTable, error) {
	offset, err := x.FindStartXRef()
	if err != nil {
		return nil, err
	}

	table := NewXRefTable()
	seen := make(map[int64]bool)

	for offset >= 0 {
		if seen[offset] {
			break // cycle in Prev chain
		}
		seen[offset] = true

		section, err := x.parseSection(offset)
		if err != nil {
			return nil, fmt.Errorf("xref section at offset %d: %w", offset, err)
		}

		for num, entry := range section.entries {
			if _, exists := table.entries[num]; !exists {
				table.entries[num] = entry
			}
		}
		if table.Trailer == nil {
			table.Trailer = section.Trailer
		}

		offset = -1
		if section.Trailer != nil {
			// Hybrid files point at an xref stream holding compressed
			// entries in addition to the classic table.
			if stm, ok := section.Trailer.GetInt("XRefStm"); ok && !seen[int64(stm)] {
				hybrid, err := x.parseSection(int64(stm))
				if err == nil {
					seen[int64(stm)] = true
					for num, entry := range hybrid.entries {
						if _, exists := table.entries[num]; !exists {
							table.entries[num] = entry
						}
					}
				}
			}
			if prev, ok := section.Trailer.GetInt("Prev"); ok {
				offset = int64(prev)
			}
		}
	}

	if table.Trailer == nil {
		return nil, fmt.Errorf("no trailer found")
	}
	return table, nil
}

// parseSection parses one xref section, dispatching on whether the data at
// offset is a classic table or an xref stream.
func (x *XRefParser) parseSection(offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= int64(len(x.data)) {
		return nil, fmt.Errorf("offset out of range")
	}

	rest := x.data[offset:]
	i := 0
	for i < len(rest) && isWhitespace(rest[i]) {
		i++
	}
	if bytes.HasPrefix(rest[i:], []byte("xref")) {
		return x.parseClassicTable(offset + int64(i) + 4)
	}
	return x.parseXRefStream(offset)
}

// parseClassicTable parses subsections of "start count" headers followed
// by fixed 20-byte entries, then the trailer dictionary.
func (x *XRefParser) parseClassicTable(offset int64) (*XRefTable, error) {
	table := NewXRefTable()
	lexer := NewLexer(x.data)
	lexer.Seek(int(offset))

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			parser := NewParser(x.data)
			parser.Seek(lexer.Pos())
			obj, err := parser.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer parse failed: %w", err)
			}
			trailer, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is not a dictionary")
			}
			table.Trailer = trailer
			return table, nil
		}

		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection header at offset %d", tok.Pos)
		}
		start, _ := strconv.Atoi(string(tok.Value))

		countTok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if countTok.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection count at offset %d", countTok.Pos)
		}
		count, _ := strconv.Atoi(string(countTok.Value))

		for i := 0; i < count; i++ {
			offTok, err := lexer.NextToken()
			if err != nil {
				return nil, err
			}
			genTok, err := lexer.NextToken()
			if err != nil {
				return nil, err
			}
			kindTok, err := lexer.NextToken()
			if err != nil {
				return nil, err
			}

			off, _ := strconv.ParseInt(string(offTok.Value), 10, 64)
			gen, _ := strconv.Atoi(string(genTok.Value))
			inUse := len(kindTok.Value) > 0 && kindTok.Value[0] == 'n'

			table.Set(start+i, &XRefEntry{
				Offset:     off,
				Generation: gen,
				InUse:      inUse,
			})
		}
	}
}

// parseXRefStream parses a PDF 1.5 cross-reference stream object.
func (x *XRefParser) parseXRefStream(offset int64) (*XRefTable, error) {
	parser := NewParser(x.data)
	parser.Seek(int(offset))

	indirect, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream object parse failed: %w", err)
	}
	stream, ok := indirect.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object at offset %d is not a stream", offset)
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("stream at offset %d is not an XRef stream", offset)
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream decode failed: %w", err)
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) < 3 {
		return nil, fmt.Errorf("xref stream missing W array")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		wi, ok := wArr[i].(Int)
		if !ok {
			return nil, fmt.Errorf("invalid W entry %d", i)
		}
		w[i] = int(wi)
	}
	rowLen := w[0] + w[1] + w[2]
	if rowLen == 0 {
		return nil, fmt.Errorf("zero-width xref stream rows")
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing Size")
	}

	// Index defaults to a single subsection covering every object.
	var index []int
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		for _, o := range idxArr {
			v, ok := o.(Int)
			if !ok {
				return nil, fmt.Errorf("invalid Index entry")
			}
			index = append(index, int(v))
		}
	} else {
		index = []int{0, int(size)}
	}

	table := NewXRefTable()
	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		start, count := index[s], index[s+1]
		for i := 0; i < count; i++ {
			if pos+rowLen > len(data) {
				return nil, fmt.Errorf("xref stream data truncated")
			}
			row := data[pos : pos+rowLen]
			pos += rowLen

			typ := 1 // default when the first field is absent
			if w[0] > 0 {
				typ = int(readBE(row[:w[0]]))
			}
			f2 := readBE(row[w[0] : w[0]+w[1]])
			f3 := readBE(row[w[0]+w[1]:])

			entry := &XRefEntry{}
			switch typ {
			case 0:
				entry.InUse = false
			case 1:
				entry.InUse = true
				entry.Offset = int64(f2)
				entry.Generation = int(f3)
			case 2:
				entry.InUse = true
				entry.InStream = true
				entry.StreamNum = int(f2)
				entry.StreamIdx = int(f3)
			default:
				continue // reserved type, ignore
			}
			table.Set(start+i, entry)
		}
	}

	table.Trailer = stream.Dict
	return table, nil
}

// readBE reads a big-endian unsigned integer from up to 8 bytes.
func readBE(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
