// Package core provides low-level PDF parsing and serialization primitives.
//
// This package implements the fundamental building blocks for working with
// PDF files, including all eight PDF object types (null, boolean, integer,
// real, string, name, array, and dictionary), as well as streams, indirect
// references, cross-reference tables, and object streams.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying
// the Object interface:
//
//   - [Null] - represents the PDF null object
//   - [Bool] - represents PDF boolean values (true/false)
//   - [Int] - represents PDF integers
//   - [Real] - represents PDF real numbers (floating point)
//   - [String] - represents PDF string objects (literal or hexadecimal)
//   - [Name] - represents PDF name objects (e.g., /Type, /Font)
//   - [Array] - represents PDF arrays
//   - [Dict] - represents PDF dictionaries
//
// Additionally, [Stream] represents a PDF stream (dictionary + binary data),
// and [IndirectRef] represents a reference to an indirect object.
//
// # Parsing
//
// The [Parser] type parses PDF syntax from in-memory file data, either one
// object at a time or as complete indirect object definitions including
// stream payloads. The [Lexer] type provides the underlying tokenization.
//
// # Cross-Reference Data
//
// The [XRefParser] type locates and parses cross-reference information,
// supporting classic xref tables, PDF 1.5 xref streams, hybrid files, and
// incremental-update Prev chains. The [ObjectStream] type unpacks objects
// stored in compressed object streams.
//
// # Serialization
//
// Unlike a read-only extractor, this package also renders objects back to
// PDF file syntax via [Serialize], with deterministic dictionary ordering
// so that serializing the same document twice yields identical bytes.
package core
