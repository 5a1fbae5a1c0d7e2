package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/wbrown/glyphreel"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(lvl)
	color := isTerminal(os.Stderr)
	if color {
		logger.SetOutput(colorable.NewColorableStderr())
	} else {
		logger.SetOutput(os.Stderr)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   color,
		DisableColors: !color,
		FullTimestamp: true,
	})
	return logger, nil
}

func terminalWidth(f *os.File, fallback int) int {
	if !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// progressBar draws a single line bar on a terminal and stays silent
// otherwise.
type progressBar struct {
	w       io.Writer
	enabled bool
	width   int
	last    int
	active  bool
}

func newProgressBar(f *os.File) *progressBar {
	b := &progressBar{enabled: isTerminal(f), last: -1}
	if b.enabled {
		b.w = colorable.NewColorable(f)
		b.width = min(100, terminalWidth(f, 80)-30)
	}
	return b
}

// Update redraws the bar when the percentage changes. Calls must not
// overlap.
func (b *progressBar) Update(p glyphreel.Progress) {
	if !b.enabled || b.width <= 0 {
		return
	}
	if p.Total <= 0 {
		fmt.Fprintf(b.w, "\r%s: %d", p.Stage, p.Done)
		b.active = true
		return
	}
	pct := p.Done * 100 / p.Total
	if pct == b.last && p.Done != p.Total {
		return
	}
	b.last = pct
	filled := min(b.width, pct*b.width/100)
	bar := make([]byte, b.width)
	for i := range bar {
		if i < filled {
			bar[i] = '='
		} else {
			bar[i] = ' '
		}
	}
	fmt.Fprintf(b.w, "\r[%s]  %d/%d  %d%% ", bar, p.Done, p.Total, pct)
	b.active = true
}

// Finish ends the current bar line.
func (b *progressBar) Finish() {
	if b.active {
		fmt.Fprintln(b.w)
	}
	b.active = false
	b.last = -1
}
