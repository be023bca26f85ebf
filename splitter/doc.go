// Package splitter plans the division of a paged document into
// size-bounded output chunks.
//
// The planner appends source pages to an in-progress chunk one at a time,
// re-serializing after every append to measure the true size. When a page
// pushes the chunk past the budget it is pulled back out, the chunk is
// saved as-is, and the same page seeds the next chunk. When one page
// alone overruns the budget the planner recompresses that page's images
// and strips broken fonts before retrying; if the page still does not fit
// the run fails, keeping any chunks already written.
//
// Full re-serialization per probe is quadratic in page count. That is a
// deliberate trade: a page's marginal serialized cost is not knowable up
// front because object sharing across pages changes with every append, so
// any incremental estimate could place pages differently.
package splitter
