package core

import (
	"fmt"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenKeyword    // true, false, null, obj, endobj, stream, endstream, R
	TokenInteger    // 123
	TokenReal       // 3.14
	TokenString     // (hello)
	TokenHexString  // <48656C6C6F>
	TokenName       // /Type
	TokenArrayStart // [
	TokenArrayEnd   // ]
	TokenDictStart  // <<
	TokenDictEnd    // >>
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int // offset of the first byte of the token
}

// Lexer performs lexical analysis of PDF content held in memory.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a new lexer over data.
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current offset into the input.
func (l *Lexer) Pos() int {
	return l.pos
}

// Seek moves the lexer to the given offset.
func (l *Lexer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.data) {
		pos = len(l.data)
	}
	l.pos = pos
}

// ReadBytes returns the next n bytes verbatim and advances past them.
// Used for stream payloads, which are not tokenized.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if l.pos+n > len(l.data) {
		return nil, fmt.Errorf("unexpected EOF reading %d bytes at offset %d", n, l.pos)
	}
	out := l.data[l.pos : l.pos+n]
	l.pos += n
	return out, nil
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() (*Token, error) {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.data) {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	b := l.data[l.pos]

	switch b {
	case '[':
		l.pos++
		return &Token{Type: TokenArrayStart, Value: l.data[start:l.pos], Pos: start}, nil
	case ']':
		l.pos++
		return &Token{Type: TokenArrayEnd, Value: l.data[start:l.pos], Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return &Token{Type: TokenDictStart, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return &Token{Type: TokenDictEnd, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return nil, fmt.Errorf("unexpected '>' at offset %d", l.pos)
	case '/':
		return l.readName()
	}

	if isDigit(b) || b == '-' || b == '+' || b == '.' {
		return l.readNumber()
	}

	if isAlpha(b) {
		return l.readKeyword()
	}

	return nil, fmt.Errorf("unexpected character %q at offset %d", b, l.pos)
}

// skipWhitespaceAndComments advances past whitespace and % comments.
// Comments never carry meaning at the object level, so they are dropped
// rather than surfaced as tokens.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		break
	}
}

// readString reads a literal string token, handling nested parentheses,
// backslash escapes, and octal escapes.
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	l.pos++ // consume '('

	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++

		switch b {
		case '\\':
			if l.pos >= len(l.data) {
				return nil, fmt.Errorf("unterminated escape in string at offset %d", start)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\n':
				// line continuation
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			default:
				if isOctalDigit(e) {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && isOctalDigit(l.data[l.pos]); i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					// Unknown escape: the backslash is ignored.
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return &Token{Type: TokenString, Value: out, Pos: start}, nil
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}

	return nil, fmt.Errorf("unterminated string at offset %d", start)
}

// readHexString reads a <...> hex string token. Whitespace inside the
// brackets is ignored and an odd final digit is padded with zero.
func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	l.pos++ // consume '<'

	var out []byte
	var hi byte
	havePair := false
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++

		if b == '>' {
			if havePair {
				out = append(out, hi<<4)
			}
			return &Token{Type: TokenHexString, Value: out, Pos: start}, nil
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, fmt.Errorf("invalid hex digit %q at offset %d", b, l.pos-1)
		}
		if havePair {
			out = append(out, hi<<4|hexValue(b))
			havePair = false
		} else {
			hi = hexValue(b)
			havePair = true
		}
	}

	return nil, fmt.Errorf("unterminated hex string at offset %d", start)
}

// readName reads a /Name token, decoding #xx escapes.
func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.pos++ // consume '/'

	var out []byte
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
		if b == '#' && l.pos+1 < len(l.data) && isHexDigit(l.data[l.pos]) && isHexDigit(l.data[l.pos+1]) {
			out = append(out, hexValue(l.data[l.pos])<<4|hexValue(l.data[l.pos+1]))
			l.pos += 2
			continue
		}
		out = append(out, b)
	}

	return &Token{Type: TokenName, Value: out, Pos: start}, nil
}

// readNumber reads an integer or real token.
func (l *Lexer) readNumber() (*Token, error) {
	start := l.pos
	isReal := false

	if l.data[l.pos] == '+' || l.data[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isDigit(b) {
			l.pos++
			continue
		}
		if b == '.' && !isReal {
			isReal = true
			l.pos++
			continue
		}
		break
	}

	if l.pos == start {
		return nil, fmt.Errorf("malformed number at offset %d", start)
	}

	typ := TokenInteger
	if isReal {
		typ = TokenReal
	}
	return &Token{Type: typ, Value: l.data[start:l.pos], Pos: start}, nil
}

// readKeyword reads an alphabetic keyword (true, false, null, obj, R, ...).
func (l *Lexer) readKeyword() (*Token, error) {
	start := l.pos
	for l.pos < len(l.data) && isAlpha(l.data[l.pos]) {
		l.pos++
	}
	return &Token{Type: TokenKeyword, Value: l.data[start:l.pos], Pos: start}, nil
}

func isWhitespace(b byte) bool {
	return b == 0x00 || b == 0x09 || b == 0x0a || b == 0x0c || b == 0x0d || b == 0x20
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
