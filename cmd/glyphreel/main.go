package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wbrown/glyphreel"
	"github.com/wbrown/glyphreel/framedir"
	"github.com/wbrown/glyphreel/imageutil"
)

type options struct {
	input      string
	output     string
	inputFPS   float64
	codec      string
	preview    bool
	width      int
	scale      float64
	verbose    bool
	configPath string
	charsets   string
}

func main() {
	cfg := glyphreel.DefaultConfig()
	var opts options

	flag.StringVar(&opts.input, "input", "",
		"Path to the input video, or a directory of frame images (required)")
	flag.StringVar(&opts.output, "output", "",
		"Path to the output video, or a directory for frame images")
	flag.StringVar(&opts.configPath, "config", "",
		"Path to a TOML config file; flags override its values")
	flag.StringVar(&cfg.Font, "font", cfg.Font,
		"Path to a monospaced TTF font (required)")
	flag.StringVar(&cfg.FontName, "fontname", cfg.FontName,
		"Font name used for the profile store (default: family name)")
	flag.Float64Var(&cfg.FontSize, "size", cfg.FontSize,
		"Glyph render size in pixels")
	flag.StringVar(&opts.charsets, "charset", "all",
		"Comma separated character sets: "+strings.Join(glyphreel.PresetNames(), ", "))
	flag.Float64Var(&cfg.OutputFPS, "fps", cfg.OutputFPS,
		"Output frame rate, 0 to match the input")
	flag.Float64Var(&opts.inputFPS, "inputfps", 30,
		"Frame rate of a frame image directory")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers,
		"Number of worker goroutines, 0 for one per CPU")
	flag.StringVar(&cfg.ProfileDir, "profiles", cfg.ProfileDir,
		"Directory where font brightness profiles are cached")
	flag.BoolVar(&cfg.Audio, "audio", cfg.Audio,
		"Copy the input's audio into the output video (needs ffmpeg)")
	flag.StringVar(&opts.codec, "codec", "mp4v",
		"FourCC of the output video codec")
	flag.BoolVar(&opts.preview, "preview", false,
		"Print the first frame as text instead of writing an output")
	flag.IntVar(&opts.width, "width", 0,
		"Preview width in characters (default: terminal width)")
	flag.Float64Var(&opts.scale, "scale", glyphreel.DefaultTextAspect,
		"Preview character height to width ratio")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if opts.configPath != "" {
		if err := applyConfigFile(&cfg, &opts); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger, err := newLogger(level)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if opts.input == "" || cfg.Font == "" || (opts.output == "" && !opts.preview) {
		fmt.Println("Please provide -input, -font and -output (or -preview)")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if opts.charsets != "" {
		cfg.Charsets = strings.Split(opts.charsets, ",")
	}
	charset, err := cfg.Charset()
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := glyphreel.TranscodeJob{
		Font:       cfg.FontSpec(),
		Profiles:   glyphreel.NewProfileStore(cfg.ProfileDir),
		Charset:    charset,
		OutputRate: cfg.OutputFPS,
		OpenSource: func(ctx context.Context) (glyphreel.FrameSource, error) {
			if framedir.IsDir(opts.input) {
				return framedir.Open(opts.input, "*", opts.inputFPS)
			}
			return openVideo(opts.input)
		},
		Workers: cfg.Workers,
		Logger:  logger,
	}

	bar := newProgressBar(os.Stderr)
	job.OnProgress = bar.Update
	job.OnStage = func(s glyphreel.Stage) {
		bar.Finish()
		logger.Debugf("stage: %s", s)
	}

	if opts.preview {
		if err := preview(ctx, job, opts); err != nil {
			logger.Fatal(err)
		}
		return
	}

	videoPath := opts.output
	if framedir.IsDir(opts.output) || imageutil.IsImagePath(opts.output) {
		dir, pattern := opts.output, framedir.DefaultPattern
		if imageutil.IsImagePath(opts.output) {
			dir, pattern = filepath.Split(opts.output)
		}
		job.CreateSink = func(glyphreel.SinkSpec) (glyphreel.FrameSink, error) {
			return framedir.Create(dir, pattern)
		}
	} else {
		if cfg.Audio && !framedir.IsDir(opts.input) {
			videoPath = tempVideoPath(opts.output)
			job.Muxer = &audioMuxer{
				video:  videoPath,
				audio:  opts.input,
				output: opts.output,
				logger: logger,
			}
		}
		job.CreateSink = func(spec glyphreel.SinkSpec) (glyphreel.FrameSink, error) {
			return createVideo(videoPath, opts.codec, spec)
		}
	}

	sum, err := job.Run(ctx)
	bar.Finish()
	report(logger, sum)
	if err != nil {
		if mux, ok := job.Muxer.(*audioMuxer); ok {
			mux.salvage()
		}
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted, output is incomplete")
			os.Exit(130)
		}
		logger.Fatal(err)
	}
}

// applyConfigFile loads the config file and reapplies the flags given on
// the command line on top of it.
func applyConfigFile(cfg *glyphreel.Config, opts *options) error {
	fileCfg, unknown, err := glyphreel.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		fmt.Fprintf(os.Stderr, "config: unknown key %q\n", key)
	}
	flags := *cfg
	*cfg = fileCfg
	charsetSet := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "font":
			cfg.Font = flags.Font
		case "fontname":
			cfg.FontName = flags.FontName
		case "size":
			cfg.FontSize = flags.FontSize
		case "fps":
			cfg.OutputFPS = flags.OutputFPS
		case "workers":
			cfg.Workers = flags.Workers
		case "profiles":
			cfg.ProfileDir = flags.ProfileDir
		case "audio":
			cfg.Audio = flags.Audio
		case "charset":
			charsetSet = true
		}
	})
	if !charsetSet {
		opts.charsets = ""
	}
	return nil
}

func preview(ctx context.Context, job glyphreel.TranscodeJob, opts options) error {
	tr, _, err := job.Transcoder(ctx)
	if err != nil {
		return err
	}
	src, err := job.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	frame, err := src.Next()
	if err != nil {
		return fmt.Errorf("%w: %w", glyphreel.ErrVideoOpen, err)
	}

	width := opts.width
	if width <= 0 {
		width = terminalWidth(os.Stdout, 80)
	}
	text, err := tr.Text(frame, width, opts.scale)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, text)
	return err
}

func report(logger logrus.FieldLogger, sum glyphreel.Summary) {
	fields := logrus.Fields{
		"stage":    sum.Stage.String(),
		"frames":   fmt.Sprintf("%d/%d", sum.FramesRendered, sum.FramesExpected),
		"selected": sum.FramesSelected,
		"read":     sum.FramesRead,
		"elapsed":  sum.Elapsed.Round(time.Millisecond),
	}
	if sum.ProfileCached {
		fields["profile"] = "cached"
	} else {
		fields["glyphs"] = fmt.Sprintf("%d/%d", sum.GlyphsGenerated, sum.GlyphsTotal)
		fields["skipped"] = sum.GlyphsSkipped
	}
	if sum.FramesSkipped > 0 {
		fields["skipped_frames"] = sum.FramesSkipped
	}
	if sum.EndedEarly {
		fields["ended_early"] = true
	}
	logger.WithFields(fields).Info("summary")
}

func tempVideoPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".noaudio" + ext
}
