package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
// Each pair of hexadecimal digits represents one byte. Whitespace is
// ignored and > marks end of data; an odd final digit is padded with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	var hi byte
	havePair := false
	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexDigitToByte(c)
		if err != nil {
			return nil, err
		}
		if havePair {
			result.WriteByte(hi<<4 | v)
			havePair = false
		} else {
			hi = v
			havePair = true
		}
	}
	if havePair {
		result.WriteByte(hi << 4)
	}

	return result.Bytes(), nil
}

// ASCII85Decode decodes ASCII base-85 encoded data.
// Each group of 5 characters (! to u) represents 4 bytes; 'z' is shorthand
// for four zero bytes and ~> marks end of data.
func ASCII85Decode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	digits := make([]byte, 0, 5)
	flush := func(n int) {
		// Pad an incomplete group with 'u' and emit n-1 bytes.
		for len(digits) < 5 {
			digits = append(digits, 84)
		}
		value := uint32(0)
		for _, d := range digits {
			value = value*85 + uint32(d)
		}
		for j := 0; j < n-1; j++ {
			result.WriteByte(byte(value >> (24 - j*8)))
		}
		digits = digits[:0]
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		if isWhitespace(c) {
			continue
		}
		if c == '~' && i+1 < len(data) && data[i+1] == '>' {
			break
		}
		if c == 'z' && len(digits) == 0 {
			result.Write([]byte{0, 0, 0, 0})
			continue
		}
		if c < '!' || c > 'u' {
			return nil, fmt.Errorf("invalid ASCII85 character: %c", c)
		}
		digits = append(digits, c-'!')
		if len(digits) == 5 {
			flush(5)
		}
	}
	if len(digits) > 1 {
		flush(len(digits))
	}

	return result.Bytes(), nil
}

// RunLengthDecode decodes PDF run-length encoded data. A length byte 0-127
// means copy the next length+1 bytes; 129-255 means repeat the next byte
// 257-length times; 128 marks end of data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	i := 0
	for i < len(data) {
		length := int(data[i])
		i++
		if length == 128 {
			break
		}
		if length < 128 {
			n := length + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("run-length literal overruns data at offset %d", i)
			}
			result.Write(data[i : i+n])
			i += n
		} else {
			if i >= len(data) {
				return nil, fmt.Errorf("run-length repeat overruns data at offset %d", i)
			}
			n := 257 - length
			for j := 0; j < n; j++ {
				result.WriteByte(data[i])
			}
			i++
		}
	}

	return result.Bytes(), nil
}

// hexDigitToByte converts a hexadecimal character to its numeric value.
func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit: %c", c)
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
