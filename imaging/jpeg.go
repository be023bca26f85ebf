package imaging

import "bytes"

// Adobe APP14 transform values. Transform 0 (CMYK) and 2 (YCCK) mark
// streams whose ink channels are stored inverted; transform 1 (YCbCr)
// does not.
const (
	AdobeTransformCMYK  = 0
	AdobeTransformYCbCr = 1
	AdobeTransformYCCK  = 2
)

var adobeSignature = []byte("Adobe")

// ScanAdobeMarker scans a JPEG byte stream for an Adobe APP14 marker and
// returns whether one is present along with its transform flag. The scan
// is a pure function of the input: the marker is the two-byte sequence
// FF EE, the five bytes starting four bytes after the marker must spell
// "Adobe", and the transform flag sits eleven bytes past the start of that
// signature. Truncated data counts as no marker.
func ScanAdobeMarker(data []byte) (present bool, transform int) {
	idx := bytes.Index(data, []byte{0xff, 0xee})
	if idx < 0 {
		return false, 0
	}

	start := idx + 4 // skip marker and two-byte segment length
	if start+len(adobeSignature) > len(data) {
		return false, 0
	}
	if !bytes.Equal(data[start:start+len(adobeSignature)], adobeSignature) {
		return false, 0
	}

	flagAt := start + 11
	if flagAt >= len(data) {
		return false, 0
	}
	return true, int(data[flagAt])
}

// needsInversion reports whether a JPEG stream's CMYK samples are stored
// inverted, per the Adobe convention: an APP14 marker with transform 0 or
// 2. Marker absence or transform 1 means no inversion. image/jpeg undoes
// the inversion itself while decoding, so this is a detection utility,
// not a processing step.
func needsInversion(jpegData []byte) bool {
	present, transform := ScanAdobeMarker(jpegData)
	return present && (transform == AdobeTransformCMYK || transform == AdobeTransformYCCK)
}

// ExtractICCProfile returns the ICC profile embedded in a JPEG stream's
// APP2 segments, or nil if there is none. Multi-chunk profiles are
// reassembled in chunk order.
func ExtractICCProfile(data []byte) []byte {
	const header = "ICC_PROFILE\x00"

	type chunk struct {
		seq     int
		payload []byte
	}
	var chunks []chunk

	for i := 0; i+4 <= len(data); i++ {
		if data[i] != 0xff || data[i+1] != 0xe2 {
			continue
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		end := i + 2 + segLen
		if segLen < 2 || end > len(data) {
			continue
		}
		seg := data[i+4 : end]
		if len(seg) < len(header)+2 || string(seg[:len(header)]) != header {
			continue
		}
		chunks = append(chunks, chunk{
			seq:     int(seg[len(header)]),
			payload: seg[len(header)+2:],
		})
		i = end - 1
	}

	if len(chunks) == 0 {
		return nil
	}

	var profile []byte
	for want := 1; want <= len(chunks); want++ {
		for _, c := range chunks {
			if c.seq == want {
				profile = append(profile, c.payload...)
				break
			}
		}
	}
	if len(profile) == 0 {
		return nil
	}
	return profile
}

// SpliceICCProfile inserts an ICC profile into an encoded JPEG stream as
// APP2 segments directly after the SOI marker, splitting the profile into
// the 65519-byte chunks the segment length field allows. If the profile is
// empty or the stream does not start with SOI, the stream is returned
// unchanged.
func SpliceICCProfile(jpegData, profile []byte) []byte {
	const header = "ICC_PROFILE\x00"
	const maxChunk = 65535 - 2 - len(header) - 2

	if len(profile) == 0 || len(jpegData) < 2 || jpegData[0] != 0xff || jpegData[1] != 0xd8 {
		return jpegData
	}

	numChunks := (len(profile) + maxChunk - 1) / maxChunk
	if numChunks > 255 {
		return jpegData // profile too large to represent
	}

	var out bytes.Buffer
	out.Write(jpegData[:2])
	for i := 0; i < numChunks; i++ {
		start := i * maxChunk
		end := start + maxChunk
		if end > len(profile) {
			end = len(profile)
		}
		payload := profile[start:end]

		segLen := 2 + len(header) + 2 + len(payload)
		out.WriteByte(0xff)
		out.WriteByte(0xe2)
		out.WriteByte(byte(segLen >> 8))
		out.WriteByte(byte(segLen))
		out.WriteString(header)
		out.WriteByte(byte(i + 1))
		out.WriteByte(byte(numChunks))
		out.Write(payload)
	}
	out.Write(jpegData[2:])
	return out.Bytes()
}
