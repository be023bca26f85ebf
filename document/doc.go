// Package document provides a mutable, in-memory PDF page container.
//
// A [Document] is an ordered collection of owned pages. [Open] parses a
// file and materializes every page as a self-contained dictionary with no
// indirect references left, so pages can be copied between documents
// without aliasing (the [Document.AppendPage] contract). [New] starts an
// empty document to assemble into.
//
// The write side serializes the current page set to a complete PDF file.
// [Document.SerializedSize] performs the same serialization into memory
// and reports the byte count; it is the size probe the splitter relies on
// and is deliberately not cached.
//
// Pages expose their embedded resources: [Page.Images] yields the image
// XObjects as [ImageResource] values that can be inspected and replaced in
// place, and [Page.Fonts] yields the font resource table used by the font
// repair pass.
package document
