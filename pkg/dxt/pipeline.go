package dxt

import (
	"runtime"
	"sync"

	"github.com/samiperttu/bimdexter/pkg/pixmap"
)

// blockOrigins enumerates the 4x4 tile origins of pm in the container's
// canonical traversal order: Y descending in strides of 4, X ascending
// in strides of 4 within each row of tiles (spec.md §2, "container reads
// pixels into Pixmap -> compressor scans the pixmap in 4x4 tiles (y
// descending, x ascending)").
func blockOrigins(pm *pixmap.Pixmap) [][2]int {
	var origins [][2]int
	for y := pm.Height() - Size; y >= 0; y -= Size {
		for x := 0; x < pm.Width(); x += Size {
			origins = append(origins, [2]int{x, y})
		}
	}
	return origins
}

// CompressPixmap compresses every 4x4 tile of pm in traversal order and
// returns the resulting blocks (in the same order) plus the sum of their
// unweighted squared errors. pm's dimensions must be multiples of 4.
func (e *Encoder) CompressPixmap(pm *pixmap.Pixmap) ([]Block, float32) {
	origins := blockOrigins(pm)
	blocks := make([]Block, len(origins))
	var totalErr float32
	for i, o := range origins {
		block, err := e.CompressBlock(pm, o[0], o[1])
		blocks[i] = block
		totalErr += err
	}
	return blocks, totalErr
}

// CompressPixmapParallel is observably identical to CompressPixmap — same
// blocks, same order, same total error — but spreads the per-tile work
// across runtime.NumCPU() goroutines. This is the "legal optimization"
// spec.md §5 allows, since each block is compressed independently and
// deterministically from its own 16 pixels and the shared Importance.
//
// A fixed pool of worker goroutines drains a channel of block indices and
// writes each result into its own pre-allocated slot, so the output keeps
// the sequential order. This is a simplified form of the ordered pipeline
// the teacher's own batch conversion path uses for per-frame archive
// decompression, adapted here to per-block compression.
func (e *Encoder) CompressPixmapParallel(pm *pixmap.Pixmap) ([]Block, float32) {
	origins := blockOrigins(pm)
	blocks := make([]Block, len(origins))
	errs := make([]float32, len(origins))

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > len(origins) {
		workers = len(origins)
	}
	if workers <= 1 {
		return e.CompressPixmap(pm)
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				o := origins[i]
				block, err := e.CompressBlock(pm, o[0], o[1])
				blocks[i] = block
				errs[i] = err
			}
		}()
	}

	for i := range origins {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var totalErr float32
	for _, err := range errs {
		totalErr += err
	}
	return blocks, totalErr
}
