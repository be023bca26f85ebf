package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// LengthResolver resolves an indirect /Length entry while a stream is being
// parsed. Returning false means the length is unknown and the parser falls
// back to scanning for the endstream keyword.
type LengthResolver func(ref IndirectRef) (int, bool)

// Parser parses PDF objects from in-memory file data.
type Parser struct {
	lexer         *Lexer
	lengthResolve LengthResolver
}

// NewParser creates a parser over data.
func NewParser(data []byte) *Parser {
	return &Parser{lexer: NewLexer(data)}
}

// SetLengthResolver installs a resolver for indirect stream lengths.
func (p *Parser) SetLengthResolver(fn LengthResolver) {
	p.lengthResolve = fn
}

// Seek positions the parser at the given byte offset.
func (p *Parser) Seek(pos int) {
	p.lexer.Seek(pos)
}

// Pos returns the parser's current byte offset.
func (p *Parser) Pos() int {
	return p.lexer.Pos()
}

// ParseObject parses the next object. Two integers followed by the keyword
// R collapse into an IndirectRef; the lookahead is undone when the R does
// not materialize.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	return p.parseFromToken(tok)
}

func (p *Parser) parseFromToken(tok *Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, fmt.Errorf("unexpected EOF")

	case TokenInteger:
		return p.parseNumberOrRef(tok)

	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q: %w", tok.Value, err)
		}
		return Real(f), nil

	case TokenString, TokenHexString:
		return String(tok.Value), nil

	case TokenName:
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()

	case TokenKeyword:
		switch string(tok.Value) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)
	}

	return nil, fmt.Errorf("unexpected token at offset %d", tok.Pos)
}

// parseNumberOrRef disambiguates between a plain integer and the start of
// an "n g R" indirect reference.
func (p *Parser) parseNumberOrRef(tok *Token) (Object, error) {
	num, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", tok.Value, err)
	}

	mark := p.lexer.Pos()
	second, err := p.lexer.NextToken()
	if err != nil || second.Type != TokenInteger {
		p.lexer.Seek(mark)
		return Int(num), nil
	}

	third, err := p.lexer.NextToken()
	if err != nil || third.Type != TokenKeyword || string(third.Value) != "R" {
		p.lexer.Seek(mark)
		return Int(num), nil
	}

	gen, err := strconv.Atoi(string(second.Value))
	if err != nil {
		p.lexer.Seek(mark)
		return Int(num), nil
	}

	return IndirectRef{Number: int(num), Generation: gen}, nil
}

func (p *Parser) parseArray() (Object, error) {
	arr := Array{}
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenArrayEnd {
			return arr, nil
		}
		if tok.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array")
		}
		obj, err := p.parseFromToken(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	dict := Dict{}
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenDictEnd {
			return dict, nil
		}
		if tok.Type != TokenName {
			return nil, fmt.Errorf("expected name key in dictionary at offset %d, got %v", tok.Pos, tok.Type)
		}
		key := string(tok.Value)

		val, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		dict[key] = val
	}
}

// ParseIndirectObject parses "n g obj ... endobj" at the current offset,
// including a trailing stream body when the object is a stream.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger {
		return nil, fmt.Errorf("expected object number at offset %d", numTok.Pos)
	}
	num, _ := strconv.Atoi(string(numTok.Value))

	genTok, err := p.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if genTok.Type != TokenInteger {
		return nil, fmt.Errorf("expected generation number at offset %d", genTok.Pos)
	}
	gen, _ := strconv.Atoi(string(genTok.Value))

	objTok, err := p.lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if objTok.Type != TokenKeyword || string(objTok.Value) != "obj" {
		return nil, fmt.Errorf("expected obj keyword at offset %d", objTok.Pos)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, err
	}

	// A dictionary followed by the stream keyword is a stream object.
	mark := p.lexer.Pos()
	next, err := p.lexer.NextToken()
	if err == nil && next.Type == TokenKeyword && string(next.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream keyword after non-dictionary at offset %d", next.Pos)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, err
		}
		obj = stream
	} else {
		p.lexer.Seek(mark)
	}

	// endobj is optional in damaged files; consume it when present.
	mark = p.lexer.Pos()
	end, err := p.lexer.NextToken()
	if err != nil || end.Type != TokenKeyword || string(end.Value) != "endobj" {
		p.lexer.Seek(mark)
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

// parseStream reads the stream payload following the stream keyword. PDF
// requires LF or CRLF after the keyword; lone CR is accepted for
// robustness.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	data := p.lexer.data
	pos := p.lexer.Pos()

	if pos < len(data) && data[pos] == '\r' {
		pos++
	}
	if pos < len(data) && data[pos] == '\n' {
		pos++
	}
	p.lexer.Seek(pos)

	length, ok := p.streamLength(dict)
	if !ok {
		// Unknown length: scan for the closing keyword.
		idx := bytes.Index(data[pos:], []byte("endstream"))
		if idx < 0 {
			return nil, fmt.Errorf("stream at offset %d has no endstream", pos)
		}
		length = idx
		// Strip the EOL that precedes endstream.
		if length > 0 && data[pos+length-1] == '\n' {
			length--
		}
		if length > 0 && data[pos+length-1] == '\r' {
			length--
		}
	}

	payload, err := p.lexer.ReadBytes(length)
	if err != nil {
		return nil, err
	}

	// Consume the endstream keyword, skipping the EOL after the payload.
	mark := p.lexer.Pos()
	end, err := p.lexer.NextToken()
	if err != nil || end.Type != TokenKeyword || string(end.Value) != "endstream" {
		p.lexer.Seek(mark)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return &Stream{Dict: dict, Data: out}, nil
}

// streamLength extracts the stream length from the dictionary, resolving
// an indirect /Length through the installed resolver when necessary.
func (p *Parser) streamLength(dict Dict) (int, bool) {
	switch v := dict.Get("Length").(type) {
	case Int:
		if v >= 0 {
			return int(v), true
		}
	case IndirectRef:
		if p.lengthResolve != nil {
			return p.lengthResolve(v)
		}
	}
	return 0, false
}
