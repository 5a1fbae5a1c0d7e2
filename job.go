package glyphreel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFontSize is the render size in pixels used when a FontSpec does
// not name one.
const DefaultFontSize = 16

// Stage is a step of a transcode job.
type Stage int

const (
	StageIdle Stage = iota
	StageLoadingFont
	StageBuildingProfile
	StageBuildingLUT
	StageTranscoding
	StageMuxing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageLoadingFont:
		return "loading font"
	case StageBuildingProfile:
		return "building profile"
	case StageBuildingLUT:
		return "building lut"
	case StageTranscoding:
		return "transcoding"
	case StageMuxing:
		return "muxing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// FontSpec locates a font and the size to render it at. Data, when set,
// takes precedence over Path. Name overrides the font's family name.
type FontSpec struct {
	Path string
	Data []byte
	Name string
	Size float64
}

// Load parses the font the spec refers to.
func (s FontSpec) Load() (*Font, error) {
	if s.Data != nil {
		return ParseFont(s.Data, s.Name)
	}
	if s.Path == "" {
		return nil, fmt.Errorf("%w: no font given", ErrFontLoad)
	}
	f, err := LoadFont(s.Path)
	if err != nil {
		return nil, err
	}
	if s.Name != "" {
		f.Identity.Name = s.Name
	}
	return f, nil
}

// RenderSize returns Size, or DefaultFontSize when Size is not positive.
func (s FontSpec) RenderSize() float64 {
	if s.Size <= 0 {
		return DefaultFontSize
	}
	return s.Size
}

// SourceInfo describes a frame source. FrameCount is zero when unknown.
type SourceInfo struct {
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int
}

// FrameSource yields decoded frames in presentation order. Next returns
// io.EOF after the last frame; any other error ends the stream early.
type FrameSource interface {
	Info() SourceInfo
	Next() (image.Image, error)
	Close() error
}

// SinkSpec describes the canvases a job will write.
type SinkSpec struct {
	Width     int
	Height    int
	FrameRate float64
}

// FrameSink receives canvases in order. WriteFrame must not keep the
// image after it returns; the job reuses canvas buffers.
type FrameSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Muxer runs after all frames are written, typically to copy the
// source audio into the output container.
type Muxer interface {
	Mux(ctx context.Context) error
}

// Progress is reported while glyphs are generated and frames rendered.
// Total is zero when unknown.
type Progress struct {
	Stage Stage
	Done  int
	Total int
}

// Summary holds the counters of a job run. Run returns it on failure
// too, with the values reached so far.
type Summary struct {
	GlyphsGenerated int
	GlyphsSkipped   int
	GlyphsTotal     int
	ProfileCached   bool

	FramesRead     int
	FramesSelected int
	FramesRendered int
	FramesSkipped  int
	FramesExpected int

	Elapsed    time.Duration
	Stage      Stage
	EndedEarly bool
}

// TranscodeJob binds a font, a character filter, a frame source and a
// sink. A job is a value: Run does not modify it and may be called more
// than once.
type TranscodeJob struct {
	Font     FontSpec
	Profiles *ProfileStore
	Charset  Charset

	// OutputRate is the requested frames per second, 0 to match the source.
	OutputRate float64

	OpenSource func(ctx context.Context) (FrameSource, error)
	CreateSink func(spec SinkSpec) (FrameSink, error)
	Muxer      Muxer

	// Workers is the number of glyph and frame workers; below one means
	// runtime.NumCPU().
	Workers int
	Logger  logrus.FieldLogger

	OnStage    func(Stage)
	OnProgress func(Progress)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

type jobRun struct {
	job    TranscodeJob
	logger logrus.FieldLogger
	sum    Summary
	start  time.Time
}

func (r *jobRun) enter(s Stage) {
	r.sum.Stage = s
	r.logger.WithField("stage", s.String()).Debug("stage")
	if r.job.OnStage != nil {
		r.job.OnStage(s)
	}
}

func (r *jobRun) progress(s Stage, done, total int) {
	if r.job.OnProgress != nil {
		r.job.OnProgress(Progress{Stage: s, Done: done, Total: total})
	}
}

func (r *jobRun) fail(err error) (Summary, error) {
	failed := r.sum.Stage
	r.enter(StageFailed)
	r.sum.Elapsed = time.Since(r.start)
	r.logger.WithFields(logrus.Fields{
		"stage": failed.String(),
		"error": err,
	}).Error("job failed")
	return r.sum, err
}

// Run executes the job. The profile is loaded from the store when
// present and built and saved otherwise. The charset is applied before
// the source is opened, so an empty selection never touches the video.
//
// Cancelling ctx stops the job at the next frame boundary. Frames
// already written stay in the sink, which is closed before Run returns.
func (j TranscodeJob) Run(ctx context.Context) (Summary, error) {
	r := j.newRun()
	tr, err := r.prepare(ctx)
	if err != nil {
		return r.fail(err)
	}

	r.enter(StageTranscoding)
	if err := r.transcode(ctx, tr); err != nil {
		return r.fail(err)
	}

	if j.Muxer != nil {
		r.enter(StageMuxing)
		if err := j.Muxer.Mux(ctx); err != nil {
			if ctx.Err() != nil {
				return r.fail(ctx.Err())
			}
			r.logger.WithError(err).Warn("mux failed, keeping video without audio")
		}
	}

	r.enter(StageDone)
	r.sum.Elapsed = time.Since(r.start)
	r.logger.WithFields(logrus.Fields{
		"frames":  r.sum.FramesRendered,
		"elapsed": r.sum.Elapsed.Round(time.Millisecond),
	}).Info("job done")
	return r.sum, nil
}

// Transcoder runs the font, profile and lookup table stages of the job
// and returns the transcoder Run would use, without touching the source.
func (j TranscodeJob) Transcoder(ctx context.Context) (*FrameTranscoder, Summary, error) {
	r := j.newRun()
	tr, err := r.prepare(ctx)
	if err != nil {
		sum, err := r.fail(err)
		return nil, sum, err
	}
	r.sum.Elapsed = time.Since(r.start)
	return tr, r.sum, nil
}

func (j TranscodeJob) newRun() *jobRun {
	r := &jobRun{job: j, logger: j.Logger, start: time.Now()}
	if r.logger == nil {
		r.logger = discardLogger()
	}
	r.enter(StageIdle)
	return r
}

func (r *jobRun) prepare(ctx context.Context) (*FrameTranscoder, error) {
	r.enter(StageLoadingFont)
	f, err := r.job.Font.Load()
	if err != nil {
		return nil, err
	}
	rast, err := NewRasterizer(f, r.job.Font.RenderSize())
	if err != nil {
		return nil, err
	}
	cw, ch := rast.CellSize()
	r.logger = r.logger.WithField("font", f.Identity.Name)

	profile, err := r.profile(ctx, f, cw, ch)
	if err != nil {
		return nil, err
	}

	r.enter(StageBuildingLUT)
	lut, err := BuildLUT(profile, r.job.Charset)
	if err != nil {
		return nil, err
	}
	atlas, err := NewGlyphAtlas(rast, lut)
	if err != nil {
		return nil, err
	}
	tr, err := NewFrameTranscoder(atlas, lut)
	if err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"glyphs": len(lut.Ranked),
		"slots":  len(lut.Slots),
		"cell":   fmt.Sprintf("%dx%d", cw, ch),
	}).Info("built lookup table")
	return tr, nil
}

func (r *jobRun) profile(ctx context.Context, f *Font, cw, ch int) (*FontProfile, error) {
	store := r.job.Profiles
	if store != nil && store.Exists(f.Identity, cw, ch) {
		p, err := store.Load(f.Identity, cw, ch)
		if err != nil {
			return nil, err
		}
		r.sum.ProfileCached = true
		r.sum.GlyphsGenerated = len(p.Entries)
		r.logger.WithField("path", store.Path(f.Identity, cw, ch)).Info("using cached profile")
		return p, nil
	}

	r.enter(StageBuildingProfile)
	p, res, err := BuildProfile(ctx, f, r.job.Font.RenderSize(),
		WithWorkers(r.job.Workers),
		WithLogger(r.logger),
		WithProgress(func(done, total int) {
			r.progress(StageBuildingProfile, done, total)
		}))
	if err != nil {
		return nil, err
	}
	r.sum.GlyphsGenerated = res.Stats.Accepted
	r.sum.GlyphsSkipped = res.Stats.Rejected
	r.sum.GlyphsTotal = res.Stats.Total
	if store != nil {
		if err := store.Save(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *jobRun) transcode(ctx context.Context, tr *FrameTranscoder) (err error) {
	if r.job.OpenSource == nil || r.job.CreateSink == nil {
		return errors.New("job has no frame source or sink")
	}
	src, err := r.job.OpenSource(ctx)
	if err != nil {
		return wrapKind(ErrVideoOpen, err)
	}
	defer src.Close()

	info := src.Info()
	sampler, err := NewFrameSampler(info.FrameRate, r.job.OutputRate)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVideoOpen, err)
	}
	w, h := tr.CanvasSize(info.Width, info.Height)
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: %w: %dx%d source, %dx%d cell", ErrVideoOpen, ErrFrameTooSmall,
			info.Width, info.Height, tr.atlas.CellWidth, tr.atlas.CellHeight)
	}
	r.sum.FramesExpected = sampler.Expected(info.FrameCount)

	sink, err := r.job.CreateSink(SinkSpec{Width: w, Height: h, FrameRate: sampler.OutputRate()})
	if err != nil {
		return wrapKind(ErrVideoWrite, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = wrapKind(ErrVideoWrite, cerr)
		}
	}()

	r.logger.WithFields(logrus.Fields{
		"source": fmt.Sprintf("%dx%d@%.3g", info.Width, info.Height, info.FrameRate),
		"output": fmt.Sprintf("%dx%d@%.3g", w, h, sampler.OutputRate()),
		"ratio":  sampler.Ratio(),
	}).Info("transcoding")

	return r.runFrames(ctx, src, sink, sampler, tr, w, h)
}

// BuildProfile renders every glyph of f at size and indexes the accepted
// ones.
func BuildProfile(ctx context.Context, f *Font, size float64, opts ...AtlasOption) (*FontProfile, *AtlasResult, error) {
	res, err := NewAtlasBuilder(size, opts...).Build(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	p := IndexGlyphs(f.Identity, res.CellWidth, res.CellHeight, res.Glyphs)
	return p, res, nil
}

func wrapKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
