// Package framedir reads and writes video frames as numbered image
// files in a directory.
package framedir

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wbrown/glyphreel"
	"github.com/wbrown/glyphreel/imageutil"
)

// DefaultPattern names output frames frame_000000.png, frame_000001.png
// and so on.
const DefaultPattern = "frame_%06d.png"

// Source yields the images of a directory in natural name order, so
// frame_2.png comes before frame_10.png.
type Source struct {
	files []string
	info  glyphreel.SourceInfo
	next  int
}

// Open lists the files in dir matching the glob pattern ("*" for every
// image file) and reads the first one to learn the frame size. Frames are
// played back at rate frames per second.
func Open(dir, pattern string, rate float64) (*Source, error) {
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", glyphreel.ErrVideoOpen, err)
	}
	var files []string
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() && imageutil.IsImagePath(m) {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no frames matching %s in %s",
			glyphreel.ErrVideoOpen, pattern, dir)
	}
	sort.Slice(files, func(i, j int) bool {
		return naturalLess(filepath.Base(files[i]), filepath.Base(files[j]))
	})

	first, err := imageutil.LoadImage(files[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", glyphreel.ErrVideoOpen, err)
	}
	b := first.Bounds()
	return &Source{
		files: files,
		info: glyphreel.SourceInfo{
			Width:      b.Dx(),
			Height:     b.Dy(),
			FrameRate:  rate,
			FrameCount: len(files),
		},
	}, nil
}

// Info describes the sequence.
func (s *Source) Info() glyphreel.SourceInfo {
	return s.info
}

// Files returns the frame paths in playback order.
func (s *Source) Files() []string {
	return s.files
}

// Next loads the next frame. A file that fails to decode ends the stream.
func (s *Source) Next() (image.Image, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	path := s.files[s.next]
	s.next++
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Close releases nothing; frames are read one file at a time.
func (s *Source) Close() error {
	return nil
}

// Sink writes each frame to its own file.
type Sink struct {
	dir     string
	pattern string
	n       int
}

// Create makes dir if needed and returns a sink naming frames with the
// printf pattern, which takes the frame number. The file extension picks
// the image format.
func Create(dir, pattern string) (*Sink, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !strings.Contains(pattern, "%") {
		return nil, fmt.Errorf("%w: pattern %q has no frame number verb",
			glyphreel.ErrVideoWrite, pattern)
	}
	if !imageutil.IsImagePath(pattern) {
		return nil, fmt.Errorf("%w: pattern %q has no image extension",
			glyphreel.ErrVideoWrite, pattern)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", glyphreel.ErrVideoWrite, err)
	}
	return &Sink{dir: dir, pattern: pattern}, nil
}

// WriteFrame saves img as the next numbered file.
func (s *Sink) WriteFrame(img image.Image) error {
	path := filepath.Join(s.dir, fmt.Sprintf(s.pattern, s.n))
	if err := imageutil.SaveImage(img, path); err != nil {
		return err
	}
	s.n++
	return nil
}

// Written returns how many frames have been saved.
func (s *Sink) Written() int {
	return s.n
}

// Close is a no-op; every frame is complete once written.
func (s *Sink) Close() error {
	return nil
}

// IsDir reports whether path names an existing directory, which is how
// the command line tells a frame directory from a video file.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// naturalLess orders names so that digit runs compare by value.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
