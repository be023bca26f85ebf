package pdfchunk

import (
	"github.com/tsawler/pdfchunk/imaging"
	"github.com/tsawler/pdfchunk/splitter"
)

// SplitOptions holds configuration for a split run.
type SplitOptions struct {
	// Chunk sizing
	maxChunkBytes int64

	// Output placement ("" means the input file's directory)
	outputDir string

	// Fallback recompression tuning
	quality      int
	maxDimension int
}

// defaultOptions returns the default split options.
func defaultOptions() SplitOptions {
	return SplitOptions{
		maxChunkBytes: splitter.DefaultBudget,
		outputDir:     "",
		quality:       imaging.DefaultQuality,
		maxDimension:  imaging.DefaultMaxDimension,
	}
}

// clone creates a copy of SplitOptions.
func (o SplitOptions) clone() SplitOptions {
	return SplitOptions{
		maxChunkBytes: o.maxChunkBytes,
		outputDir:     o.outputDir,
		quality:       o.quality,
		maxDimension:  o.maxDimension,
	}
}
