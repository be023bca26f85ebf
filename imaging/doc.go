// Package imaging recompresses the image resources embedded in PDF pages.
//
// It understands the two stream encodings that can be decoded without
// external codecs, DCTDecode (JPEG) and FlateDecode (raw samples), and
// rewrites them as RGB JPEG streams. Along the way it converts CMYK
// buffers to RGB (reading the JPEG APP14 Adobe marker to decide whether
// the ink channels were stored inverted), scales images down to a maximum
// edge length, flattens transparency and palettes onto a white background,
// and carries embedded ICC color profiles over to the re-encoded stream.
//
// Images that were already JPEG and required no transformation are left
// byte-identical unless forced, so running the optimizer twice over the
// same page is a no-op.
package imaging
