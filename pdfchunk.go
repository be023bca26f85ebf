// Package pdfchunk provides a fluent API for splitting a PDF into
// size-bounded parts.
//
// Basic usage:
//
//	report, err := pdfchunk.Open("document.pdf").Split()
//	if err != nil {
//	    // handle error
//	}
//	for _, c := range report.Chunks {
//	    log.Printf("%s: %d pages, %d bytes", c.Path, c.Pages, c.Size)
//	}
//
// With options:
//
//	report, err := pdfchunk.Open("scan.pdf").
//	    MaxChunkSize(2 << 20).
//	    OutputDir("out").
//	    Split()
//
// For advanced use cases, the lower-level document and splitter packages
// are also available.
package pdfchunk

import (
	"fmt"
	"os"

	"github.com/tsawler/pdfchunk/config"
	"github.com/tsawler/pdfchunk/document"
	"github.com/tsawler/pdfchunk/splitter"
)

// Report and ChunkInfo describe the outcome of a split run.
type (
	Report    = splitter.Report
	ChunkInfo = splitter.ChunkInfo
)

// ErrBudgetExceeded is returned when one page cannot be compressed under
// the chunk size limit.
var ErrBudgetExceeded = splitter.ErrBudgetExceeded

// Splitter provides a fluent interface for configuring and running a
// split. Each configuration method returns a new Splitter instance,
// making chains safe to fork and reuse.
type Splitter struct {
	// Source
	filename string
	source   *document.Document

	// Configuration
	options SplitOptions

	// Accumulated error (fail-fast)
	err error
}

// Open prepares a split of the PDF at filename. The file is not read
// until a terminal operation like Split or PageCount runs.
//
// Example:
//
//	report, err := pdfchunk.Open("document.pdf").Split()
func Open(filename string) *Splitter {
	return &Splitter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument wraps an already-loaded document. The filename is still
// required; it names the output parts.
func FromDocument(doc *document.Document, filename string) *Splitter {
	return &Splitter{
		filename: filename,
		source:   doc,
		options:  defaultOptions(),
	}
}

// clone creates a copy of the Splitter so chain methods never mutate
// their receiver.
func (s *Splitter) clone() *Splitter {
	return &Splitter{
		filename: s.filename,
		source:   s.source,
		options:  s.options.clone(),
		err:      s.err,
	}
}

// MaxChunkSize sets the per-chunk byte budget.
func (s *Splitter) MaxChunkSize(bytes int64) *Splitter {
	next := s.clone()
	if bytes <= 0 {
		next.err = fmt.Errorf("chunk size must be positive, got %d", bytes)
		return next
	}
	next.options.maxChunkBytes = bytes
	return next
}

// OutputDir sets the directory receiving the chunk files. It is created
// if absent. The default is the input file's own directory.
func (s *Splitter) OutputDir(dir string) *Splitter {
	next := s.clone()
	next.options.outputDir = dir
	return next
}

// Quality sets the JPEG quality used when the fallback recompresses an
// oversized page's images.
func (s *Splitter) Quality(q int) *Splitter {
	next := s.clone()
	if q < 1 || q > 100 {
		next.err = fmt.Errorf("quality must be in 1..100, got %d", q)
		return next
	}
	next.options.quality = q
	return next
}

// MaxDimension caps the longer edge of recompressed images, in pixels.
func (s *Splitter) MaxDimension(px int) *Splitter {
	next := s.clone()
	if px < 1 {
		next.err = fmt.Errorf("max dimension must be positive, got %d", px)
		return next
	}
	next.options.maxDimension = px
	return next
}

// WithConfig applies a loaded run configuration. Zero-valued fields keep
// their current settings.
func (s *Splitter) WithConfig(cfg *config.Config) *Splitter {
	next := s.clone()
	if cfg == nil {
		return next
	}
	if cfg.Split.MaxChunkBytes > 0 {
		next.options.maxChunkBytes = cfg.Split.MaxChunkBytes
	}
	if cfg.Split.OutputDir != "" {
		next.options.outputDir = cfg.Split.OutputDir
	}
	if cfg.Image.Quality > 0 {
		next.options.quality = cfg.Image.Quality
	}
	if cfg.Image.MaxDimension > 0 {
		next.options.maxDimension = cfg.Image.MaxDimension
	}
	return next
}

// ensureSource loads the document if not already loaded.
func (s *Splitter) ensureSource() error {
	if s.source != nil {
		return nil
	}
	if s.filename == "" {
		return fmt.Errorf("no filename specified")
	}
	doc, err := document.Open(s.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	s.source = doc
	return nil
}

// PageCount returns the number of pages in the source document.
func (s *Splitter) PageCount() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := s.ensureSource(); err != nil {
		return 0, err
	}
	return s.source.PageCount(), nil
}

// Split runs the planner and writes the chunk files. It is the terminal
// operation of a chain. The returned report lists every chunk written,
// including those saved before a failure.
func (s *Splitter) Split() (*Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := s.ensureSource(); err != nil {
		return nil, err
	}

	outputDir := splitter.ResolveOutputDir(s.filename, s.options.outputDir)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	planner := &splitter.Planner{
		Budget:       s.options.maxChunkBytes,
		Quality:      s.options.quality,
		MaxDimension: s.options.maxDimension,
	}
	return planner.Split(s.source, s.filename, outputDir)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfchunk.Must(pdfchunk.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
