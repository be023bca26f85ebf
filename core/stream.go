package core

import (
	"fmt"

	"github.com/tsawler/pdfchunk/internal/filters"
)

// Decode decodes the stream data according to the Filter(s) specified in
// the stream dictionary. It supports FlateDecode, ASCIIHexDecode,
// ASCII85Decode, RunLengthDecode, CCITTFaxDecode, and filter chains.
// DCTDecode data is returned as-is; JPEG decoding belongs to the imaging
// layer, not the container.
func (s *Stream) Decode() ([]byte, error) {
	filterObj := s.Dict.Get("Filter")
	if filterObj == nil {
		return s.Data, nil
	}

	paramsObj := s.Dict.Get("DecodeParms")

	if filterName, ok := filterObj.(Name); ok {
		return decodeWithFilter(s.Data, string(filterName), paramsToDict(paramsObj))
	}

	if filterArray, ok := filterObj.(Array); ok {
		data := s.Data
		for i, filter := range filterArray {
			filterName, ok := filter.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is not a name: %T", i, filter)
			}

			var params Dict
			if paramsArray, ok := paramsObj.(Array); ok {
				if i < len(paramsArray) {
					params = paramsToDict(paramsArray[i])
				}
			} else {
				params = paramsToDict(paramsObj)
			}

			var err error
			data, err = decodeWithFilter(data, string(filterName), params)
			if err != nil {
				return nil, fmt.Errorf("filter %d (%s) failed: %w", i, filterName, err)
			}
		}
		return data, nil
	}

	return nil, fmt.Errorf("invalid Filter type: %T", filterObj)
}

// FilterName returns the name of the stream's first filter, or the empty
// string when the stream is unfiltered.
func (s *Stream) FilterName() string {
	switch f := s.Dict.Get("Filter").(type) {
	case Name:
		return string(f)
	case Array:
		if len(f) > 0 {
			if n, ok := f[0].(Name); ok {
				return string(n)
			}
		}
	}
	return ""
}

// decodeWithFilter applies a single decompression filter to data.
func decodeWithFilter(data []byte, filterName string, params Dict) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, dictToParams(params))

	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)

	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)

	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)

	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, dictToParams(params))

	case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode":
		// Compressed image formats pass through untouched.
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported filter: %s", filterName)
	}
}

// paramsToDict normalizes a DecodeParms entry to a Dict.
func paramsToDict(obj Object) Dict {
	if d, ok := obj.(Dict); ok {
		return d
	}
	return nil
}

// dictToParams converts a decode-parameter dictionary to the filters
// package parameter map.
func dictToParams(d Dict) filters.Params {
	if d == nil {
		return nil
	}
	params := make(filters.Params, len(d))
	for k, v := range d {
		switch val := v.(type) {
		case Int:
			params[k] = int(val)
		case Bool:
			params[k] = bool(val)
		case Name:
			params[k] = string(val)
		}
	}
	return params
}
