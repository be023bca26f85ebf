// Package filters implements PDF stream compression filters.
//
// Decoding covers the filters that appear in page and image streams:
// FlateDecode (with TIFF and PNG predictors), ASCIIHexDecode,
// ASCII85Decode, RunLengthDecode, and CCITTFaxDecode. FlateEncode provides
// the write side used when a document is serialized back to disk.
//
// DCTDecode (JPEG) data is deliberately not handled here; the imaging
// layer owns pixel codecs.
package filters
