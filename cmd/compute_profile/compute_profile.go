package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wbrown/glyphreel"
)

func main() {
	cfg := glyphreel.DefaultConfig()
	flag.StringVar(&cfg.Font, "font", "", "Path to the input font file (required)")
	flag.StringVar(&cfg.FontName, "name", "", "Font name for the profile store (default: family name)")
	flag.Float64Var(&cfg.FontSize, "size", cfg.FontSize, "Glyph render size in pixels")
	flag.StringVar(&cfg.ProfileDir, "profiles", cfg.ProfileDir, "Profile store directory")
	flag.IntVar(&cfg.Workers, "workers", 0, "Number of rasterizer goroutines, 0 for one per CPU")
	force := flag.Bool("force", false, "Rebuild the profile even if one is cached")
	ramp := flag.Int("ramp", 0, "Print this many glyphs spread over the brightness range")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if cfg.Font == "" {
		fmt.Println("The -font flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spec := cfg.FontSpec()
	font, err := spec.Load()
	if err != nil {
		logger.Fatalf("Failed to load font: %v", err)
	}
	rast, err := glyphreel.NewRasterizer(font, spec.RenderSize())
	if err != nil {
		logger.Fatalf("Failed to prepare font: %v", err)
	}
	cw, ch := rast.CellSize()
	store := glyphreel.NewProfileStore(cfg.ProfileDir)
	path := store.Path(font.Identity, cw, ch)

	var profile *glyphreel.FontProfile
	if !*force && store.Exists(font.Identity, cw, ch) {
		logger.Infof("Profile already cached at %s", path)
		if profile, err = store.Load(font.Identity, cw, ch); err != nil {
			logger.Fatalf("Failed to load profile: %v", err)
		}
	} else {
		logger.Infof("Computing brightness profile for %s (%dx%d cell)", font.Identity.Name, cw, ch)
		var res *glyphreel.AtlasResult
		profile, res, err = glyphreel.BuildProfile(ctx, font, spec.RenderSize(),
			glyphreel.WithWorkers(cfg.Workers),
			glyphreel.WithLogger(logger))
		if err != nil {
			logger.Fatalf("Failed to compute profile: %v", err)
		}
		if err := store.Save(profile); err != nil {
			logger.Fatalf("Failed to save profile: %v", err)
		}
		reasons := make([]string, 0, len(res.Stats.ByReason))
		for reason, n := range res.Stats.ByReason {
			reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
		}
		sort.Strings(reasons)
		logger.Infof("Kept %d of %d glyphs, rejected %v", res.Stats.Accepted, res.Stats.Total, reasons)

		if fi, err := os.Stat(path); err == nil {
			logger.Infof("Saved profile to %s (%.2f KB)", path, float64(fi.Size())/1024)
		}
	}

	if *ramp > 0 {
		lut, err := glyphreel.BuildLUT(profile, glyphreel.AllChars())
		if err != nil {
			logger.Fatal(err)
		}
		fmt.Println(rampString(lut, *ramp))
	}
}

// rampString picks n glyphs at evenly spaced intensity levels.
func rampString(lut *glyphreel.LUT, n int) string {
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		level := 0
		if n > 1 {
			level = i * (glyphreel.LUTSize - 1) / (n - 1)
		}
		out = append(out, lut.Rune(uint8(level)))
	}
	return string(out)
}
