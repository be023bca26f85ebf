package core

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Serialize renders an object in PDF file syntax. Dictionary keys are
// written in sorted order so output is deterministic, which keeps repeated
// size probes of the same document byte-identical.
func Serialize(obj Object) []byte {
	var buf bytes.Buffer
	writeObject(&buf, obj)
	return buf.Bytes()
}

func writeObject(buf *bytes.Buffer, obj Object) {
	switch o := obj.(type) {
	case nil:
		buf.WriteString("null")
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(o.String())
	case Int:
		buf.WriteString(o.String())
	case Real:
		writeReal(buf, float64(o))
	case String:
		writeString(buf, string(o))
	case Name:
		writeName(buf, string(o))
	case Array:
		buf.WriteByte('[')
		for i, el := range o {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, el)
		}
		buf.WriteByte(']')
	case Dict:
		writeDict(buf, o)
	case *Stream:
		writeDict(buf, o.Dict)
		buf.WriteString("\nstream\n")
		buf.Write(o.Data)
		buf.WriteString("\nendstream")
	case IndirectRef:
		fmt.Fprintf(buf, "%d %d R", o.Number, o.Generation)
	default:
		buf.WriteString("null")
	}
}

func writeDict(buf *bytes.Buffer, d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("<<")
	for _, k := range keys {
		buf.WriteByte(' ')
		writeName(buf, k)
		buf.WriteByte(' ')
		writeObject(buf, d[k])
	}
	buf.WriteString(" >>")
}

// writeReal writes a real number without exponent notation, which PDF
// syntax does not allow.
func writeReal(buf *bytes.Buffer, f float64) {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	buf.WriteString(s)
}

// writeString writes a literal string, escaping delimiters and encoding
// non-printable bytes as octal escapes.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('(')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if b < 0x20 || b > 0x7e {
				fmt.Fprintf(buf, `\%03o`, b)
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte(')')
}

// writeName writes a name object, escaping bytes outside the regular
// character range with #xx sequences.
func writeName(buf *bytes.Buffer, n string) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		b := n[i]
		if b <= 0x20 || b > 0x7e || b == '#' || isDelimiter(b) {
			fmt.Fprintf(buf, "#%02X", b)
		} else {
			buf.WriteByte(b)
		}
	}
}
