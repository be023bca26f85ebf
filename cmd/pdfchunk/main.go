// Command pdfchunk splits a PDF into parts no larger than a byte budget.
//
// Usage:
//
//	pdfchunk [flags] input.pdf
//
// Each part is written next to the input (or into -out) as
// input_part01.pdf, input_part02.pdf, and so on. A page that cannot fit
// the budget on its own has its images recompressed first; if it still
// does not fit, the run fails and the parts already written are kept.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tsawler/pdfchunk"
	"github.com/tsawler/pdfchunk/config"
)

func main() {
	var (
		outDir     = flag.String("out", "", "output directory (default: alongside the input file)")
		maxBytes   = flag.Int64("max-bytes", 0, "per-part size budget in bytes (default 4 MiB)")
		quality    = flag.Int("quality", 0, "JPEG quality for fallback recompression (default 75)")
		maxDim     = flag.Int("max-dimension", 0, "longest image edge after fallback resize (default 1500)")
		configPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input.pdf\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	log.SetFlags(0)

	if _, err := os.Stat(input); err != nil {
		log.Printf("error: cannot read %s: %v", input, err)
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}

	run := pdfchunk.Open(input).WithConfig(cfg)
	if *outDir != "" {
		run = run.OutputDir(*outDir)
	}
	if *maxBytes > 0 {
		run = run.MaxChunkSize(*maxBytes)
	}
	if *quality > 0 {
		run = run.Quality(*quality)
	}
	if *maxDim > 0 {
		run = run.MaxDimension(*maxDim)
	}

	report, err := run.Split()
	if report != nil {
		for _, w := range report.Warnings {
			log.Printf("warning: %s", w)
		}
		if report.RemovedFonts > 0 {
			log.Printf("removed %d broken font(s)", report.RemovedFonts)
		}
		for _, c := range report.Chunks {
			log.Printf("saved %s (%d pages, %d bytes)", c.Path, c.Pages, c.Size)
		}
	}
	if err != nil {
		if errors.Is(err, pdfchunk.ErrBudgetExceeded) {
			log.Printf("error: %v", err)
			log.Printf("parts already written were kept")
		} else {
			log.Printf("error: %v", err)
		}
		os.Exit(1)
	}

	log.Printf("done: %d part(s)", len(report.Chunks))
}
