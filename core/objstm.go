package core

import (
	"fmt"
	"strconv"
)

// ObjectStream provides access to objects packed inside a PDF 1.5 object
// stream (/Type /ObjStm).
type ObjectStream struct {
	stream  *Stream
	decoded []byte
	offsets []objectStreamOffset
	first   int
}

type objectStreamOffset struct {
	objNum int
	offset int
}

// NewObjectStream wraps a stream object and parses its header.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if typ, _ := stream.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("not an object stream: /Type is %q", typ)
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok {
		return nil, fmt.Errorf("object stream missing N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok {
		return nil, fmt.Errorf("object stream missing First")
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("object stream decode failed: %w", err)
	}
	if int(first) > len(decoded) {
		return nil, fmt.Errorf("object stream First %d beyond data length %d", first, len(decoded))
	}

	os := &ObjectStream{
		stream:  stream,
		decoded: decoded,
		first:   int(first),
	}
	if err := os.parseHeader(int(n)); err != nil {
		return nil, err
	}
	return os, nil
}

// parseHeader reads the N pairs of object number and relative offset that
// precede the packed objects.
func (os *ObjectStream) parseHeader(n int) error {
	lexer := NewLexer(os.decoded[:os.first])

	for i := 0; i < n; i++ {
		numTok, err := lexer.NextToken()
		if err != nil {
			return fmt.Errorf("object stream header entry %d: %w", i, err)
		}
		offTok, err := lexer.NextToken()
		if err != nil {
			return fmt.Errorf("object stream header entry %d: %w", i, err)
		}
		if numTok.Type != TokenInteger || offTok.Type != TokenInteger {
			return fmt.Errorf("object stream header entry %d is not an integer pair", i)
		}

		num, _ := strconv.Atoi(string(numTok.Value))
		off, _ := strconv.Atoi(string(offTok.Value))
		os.offsets = append(os.offsets, objectStreamOffset{objNum: num, offset: off})
	}
	return nil
}

// N returns the number of objects in the stream.
func (os *ObjectStream) N() int {
	return len(os.offsets)
}

// GetObjectByIndex parses and returns the object at the given index along
// with its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("object stream index %d out of range [0, %d)", index, len(os.offsets))
	}

	entry := os.offsets[index]
	pos := os.first + entry.offset
	if pos > len(os.decoded) {
		return nil, 0, fmt.Errorf("object %d offset %d beyond data", entry.objNum, pos)
	}

	parser := NewParser(os.decoded)
	parser.Seek(pos)
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d parse failed: %w", entry.objNum, err)
	}
	return obj, entry.objNum, nil
}

// GetObjectByNumber parses and returns the object with the given number.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, error) {
	for i, entry := range os.offsets {
		if entry.objNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", objNum)
}
