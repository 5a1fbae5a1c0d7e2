package glyphreel

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Glyph is an accepted codepoint and its rendered cell bitmap.
type Glyph struct {
	Codepoint rune
	Bitmap    *image.Gray
}

// Brightness returns the glyph's mean luminance in [0,1].
func (g Glyph) Brightness() float64 {
	return Brightness(g.Bitmap)
}

// AtlasStats counts the outcome of a glyph generation run.
type AtlasStats struct {
	Total    int
	Accepted int
	Rejected int
	ByReason map[RejectReason]int
}

// AtlasResult is the accepted glyph set of a font at one render size.
// Glyphs are in ascending codepoint order.
type AtlasResult struct {
	CellWidth  int
	CellHeight int
	Glyphs     []Glyph
	Stats      AtlasStats
}

// AtlasBuilder rasterizes every codepoint a font declares and keeps the
// ones that render as distinct glyphs inside the cell.
type AtlasBuilder struct {
	size     float64
	workers  int
	logger   logrus.FieldLogger
	progress func(done, total int)
}

// AtlasOption configures an AtlasBuilder.
type AtlasOption func(*AtlasBuilder)

// WithWorkers sets how many goroutines rasterize in parallel. Values
// below one mean runtime.NumCPU().
func WithWorkers(n int) AtlasOption {
	return func(b *AtlasBuilder) {
		b.workers = n
	}
}

// WithLogger sets the logger used for build reports.
func WithLogger(logger logrus.FieldLogger) AtlasOption {
	return func(b *AtlasBuilder) {
		b.logger = logger
	}
}

// WithProgress registers a callback invoked after each codepoint. Calls
// are serialized.
func WithProgress(fn func(done, total int)) AtlasOption {
	return func(b *AtlasBuilder) {
		b.progress = fn
	}
}

// NewAtlasBuilder creates a builder rendering at size pixels.
func NewAtlasBuilder(size float64, opts ...AtlasOption) *AtlasBuilder {
	b := &AtlasBuilder{
		size:   size,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = runtime.NumCPU()
	}
	return b
}

type classified struct {
	bitmap *image.Gray
	reason RejectReason
}

// Build classifies the font's codepoints. A codepoint that fails to
// render is counted as rejected; only an unusable font or a cancelled
// context fails the build.
func (b *AtlasBuilder) Build(ctx context.Context, f *Font) (*AtlasResult, error) {
	first, err := NewRasterizer(f, b.size)
	if err != nil {
		return nil, err
	}
	candidates := f.Codepoints()
	outcomes := make([]classified, len(candidates))

	workers := b.workers
	if workers > len(candidates) {
		workers = max(1, len(candidates))
	}

	var done atomic.Int64
	var progressMu sync.Mutex
	report := func() {
		n := int(done.Add(1))
		if b.progress == nil {
			return
		}
		progressMu.Lock()
		b.progress(n, len(candidates))
		progressMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// Faces cache glyph state, so each worker owns one.
			rast := first
			if w > 0 {
				var err error
				if rast, err = NewRasterizer(f, b.size); err != nil {
					return err
				}
			}
			for n, i := 0, w; i < len(candidates); n, i = n+1, i+workers {
				if n%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				bitmap, reason := rast.Classify(candidates[i])
				outcomes[i] = classified{bitmap: bitmap, reason: reason}
				report()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cw, ch := first.CellSize()
	res := &AtlasResult{
		CellWidth:  cw,
		CellHeight: ch,
		Stats: AtlasStats{
			Total:    len(candidates),
			ByReason: make(map[RejectReason]int),
		},
	}
	for i, o := range outcomes {
		if o.reason != Accepted {
			res.Stats.Rejected++
			res.Stats.ByReason[o.reason]++
			continue
		}
		res.Stats.Accepted++
		res.Glyphs = append(res.Glyphs, Glyph{Codepoint: candidates[i], Bitmap: o.bitmap})
	}

	fields := logrus.Fields{
		"font":     f.Identity.Name,
		"cell":     fmt.Sprintf("%dx%d", cw, ch),
		"accepted": res.Stats.Accepted,
		"total":    res.Stats.Total,
	}
	for reason, n := range res.Stats.ByReason {
		fields[reason.String()] = n
	}
	b.logger.WithFields(fields).Info("generated glyphs")
	return res, nil
}
