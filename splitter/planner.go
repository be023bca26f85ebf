package splitter

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfchunk/document"
	"github.com/tsawler/pdfchunk/fontrepair"
	"github.com/tsawler/pdfchunk/imaging"
)

// DefaultBudget is the maximum serialized size of one output chunk. It
// deliberately sits below common upload caps to leave headroom.
const DefaultBudget int64 = 4 << 20

// ErrBudgetExceeded is returned when a single page still serializes above
// the budget after image recompression and font repair.
var ErrBudgetExceeded = errors.New("page exceeds chunk budget after compression")

// Source is the read side of a paged container.
type Source interface {
	PageCount() int
	Page(index int) (*document.Page, error)
}

// Chunk is an in-progress output container. Serialization must be a pure
// function of the current page set so repeated size probes agree.
type Chunk interface {
	PageCount() int
	Page(index int) (*document.Page, error)
	AppendPage(page *document.Page)
	RemoveLastPage()
	SerializedSize() (int64, error)
	Save(path string) error
}

// Planner assembles pages into budget-bounded chunks. Pages are appended
// one at a time and the chunk is re-serialized after each append; when the
// budget is exceeded the last page is pushed back and retried as the seed
// of the next chunk. A page too large on its own goes through the
// recompression fallback before the run is allowed to fail.
type Planner struct {
	// Budget is the per-chunk byte limit. Zero means DefaultBudget.
	Budget int64

	// Quality and MaxDimension tune the fallback recompression. Zero
	// values take the imaging defaults.
	Quality      int
	MaxDimension int

	// Test seams. When nil the real container and recompression
	// pipeline are used.
	newChunk func() Chunk
	compress func(page *document.Page) []string
}

// NewPlanner returns a planner with default tuning.
func NewPlanner() *Planner {
	return &Planner{Budget: DefaultBudget}
}

// ChunkInfo records one saved chunk.
type ChunkInfo struct {
	Path  string
	Pages int
	Size  int64
}

// Report summarizes a split run. On failure it still lists the chunks
// that were saved before the run aborted; those files are kept on disk.
type Report struct {
	Chunks       []ChunkInfo
	Warnings     []string
	RemovedFonts int
}

// Split walks the source pages in order and writes each completed chunk
// to outputDir, named after inputPath with a _partNN suffix. The returned
// report is valid even when err is non-nil.
func (p *Planner) Split(src Source, inputPath, outputDir string) (*Report, error) {
	report := &Report{}
	current := p.makeChunk()
	chunkNum := 1
	total := src.PageCount()

	i := 0
	for i < total {
		page, err := src.Page(i)
		if err != nil {
			return report, fmt.Errorf("reading page %d: %w", i+1, err)
		}
		current.AppendPage(page)

		size, err := current.SerializedSize()
		if err != nil {
			return report, fmt.Errorf("measuring chunk %d: %w", chunkNum, err)
		}

		if size <= p.budget() {
			i++
			continue
		}

		if current.PageCount() > 1 {
			// The page that tipped the chunk over seeds the next
			// one; the cursor stays put.
			current.RemoveLastPage()
			if err := p.flush(current, inputPath, outputDir, chunkNum, report); err != nil {
				return report, err
			}
			chunkNum++
			current = p.makeChunk()
			continue
		}

		// A single page over budget: recompress its images and strip
		// broken fonts, then measure again.
		p.compressPage(current, report)
		size, err = current.SerializedSize()
		if err != nil {
			return report, fmt.Errorf("measuring chunk %d: %w", chunkNum, err)
		}
		if size > p.budget() {
			return report, fmt.Errorf("page %d: %w (%d bytes over a %d byte budget)",
				i+1, ErrBudgetExceeded, size, p.budget())
		}

		if err := p.flush(current, inputPath, outputDir, chunkNum, report); err != nil {
			return report, err
		}
		chunkNum++
		current = p.makeChunk()
		i++
	}

	if current.PageCount() > 0 {
		if err := p.flush(current, inputPath, outputDir, chunkNum, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (p *Planner) budget() int64 {
	if p.Budget > 0 {
		return p.Budget
	}
	return DefaultBudget
}

func (p *Planner) makeChunk() Chunk {
	if p.newChunk != nil {
		return p.newChunk()
	}
	return document.New()
}

// compressPage runs the fallback pipeline over the chunk's only page. The
// page inside the chunk is an independent copy, so the source document is
// never touched.
func (p *Planner) compressPage(current Chunk, report *Report) {
	page, err := current.Page(0)
	if err != nil {
		report.Warnings = append(report.Warnings, err.Error())
		return
	}

	if p.compress != nil {
		report.Warnings = append(report.Warnings, p.compress(page)...)
		return
	}

	opt := &imaging.Optimizer{
		Quality:      p.Quality,
		MaxDimension: p.MaxDimension,
		Force:        true,
	}
	if opt.Quality <= 0 {
		opt.Quality = imaging.DefaultQuality
	}
	if opt.MaxDimension <= 0 {
		opt.MaxDimension = imaging.DefaultMaxDimension
	}

	// A failure on one image is recorded and the rest are still
	// processed.
	for _, res := range opt.OptimizePage(page) {
		if res.Err != nil {
			report.Warnings = append(report.Warnings, res.Err.Error())
		}
	}
	report.RemovedFonts += fontrepair.RemoveBroken(page)
}

// flush saves the chunk and records it in the report.
func (p *Planner) flush(current Chunk, inputPath, outputDir string, num int, report *Report) error {
	path := OutputPath(inputPath, outputDir, num)
	size, err := current.SerializedSize()
	if err != nil {
		return fmt.Errorf("measuring chunk %d: %w", num, err)
	}
	if err := current.Save(path); err != nil {
		return fmt.Errorf("saving chunk %d: %w", num, err)
	}
	report.Chunks = append(report.Chunks, ChunkInfo{
		Path:  path,
		Pages: current.PageCount(),
		Size:  size,
	})
	return nil
}
