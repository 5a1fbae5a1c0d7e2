package glyphreel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/glyphreel/imageutil"
)

type sourceFrame struct {
	seq   int
	frame image.Image
}

// renderedFrame carries a nil canvas for a frame that failed to
// transcode, so the writer can step past its sequence number.
type renderedFrame struct {
	seq    int
	canvas *image.Gray
}

// runFrames streams src through the sampler and transcoder into sink.
// One goroutine decodes and samples, workers transcode, and one goroutine
// writes canvases back in sequence order. At most inFlight frames are
// between the decoder and the writer at any time.
func (r *jobRun) runFrames(ctx context.Context, src FrameSource, sink FrameSink,
	sampler *FrameSampler, tr *FrameTranscoder, width, height int) error {
	workers := r.job.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	inFlight := make(chan struct{}, 4*workers)
	frames := make(chan sourceFrame, workers)
	rendered := make(chan renderedFrame, workers)
	canvases := sync.Pool{New: func() any { return imageutil.NewGray(width, height) }}

	var read, selected, written, skipped int
	var endedEarly bool

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		for seq := 0; ; {
			if err := gctx.Err(); err != nil {
				return err
			}
			frame, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				endedEarly = true
				r.logger.WithError(fmt.Errorf("%w: %w", ErrStreamEndedEarly, err)).
					WithField("frame", read).Warn("decode failed, ending stream")
				return nil
			}
			read++
			if !sampler.Keep() {
				continue
			}
			select {
			case inFlight <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case frames <- sourceFrame{seq: seq, frame: frame}:
				seq++
				selected++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for f := range frames {
				canvas := canvases.Get().(*image.Gray)
				if err := tr.TranscodeInto(canvas, f.frame); err != nil {
					r.logger.WithError(err).WithField("frame", f.seq).Warn("skipping frame")
					canvases.Put(canvas)
					canvas = nil
				}
				select {
				case rendered <- renderedFrame{seq: f.seq, canvas: canvas}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(rendered)
	}()

	g.Go(func() error {
		pending := make(map[int]*image.Gray)
		next := 0
		for f := range rendered {
			pending[f.seq] = f.canvas
			for {
				canvas, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				<-inFlight
				if canvas == nil {
					skipped++
					continue
				}
				err := sink.WriteFrame(canvas)
				canvases.Put(canvas)
				if err != nil {
					return fmt.Errorf("%w: frame %d: %w", ErrVideoWrite, next-1, err)
				}
				written++
				r.progress(StageTranscoding, written, r.sum.FramesExpected)
			}
		}
		return nil
	})

	err := g.Wait()
	r.sum.FramesRead = read
	r.sum.FramesSelected = selected
	r.sum.FramesRendered = written
	r.sum.FramesSkipped = skipped
	r.sum.EndedEarly = endedEarly
	if err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"read":     read,
		"selected": selected,
		"rendered": written,
	}).Info("transcoded frames")
	return nil
}
