package glyphreel

import (
	"context"
	"errors"
)

// Error kinds reported by the transcoding pipeline. Errors returned from
// this package wrap one of these, so callers can test with errors.Is.
var (
	// ErrFontLoad means the font resource is unreadable or corrupt.
	ErrFontLoad = errors.New("font load failed")

	// ErrGlyphRejected marks a single codepoint that failed acceptance.
	// It is never returned from a job; rejections are only counted.
	ErrGlyphRejected = errors.New("glyph rejected")

	// ErrProfileIO means a brightness profile could not be read or written.
	ErrProfileIO = errors.New("profile i/o failed")

	// ErrEmptyCharset means the character filter left no glyphs.
	ErrEmptyCharset = errors.New("no glyphs left after charset filter")

	// ErrVideoOpen means the frame source could not be opened.
	ErrVideoOpen = errors.New("video source unreadable")

	// ErrVideoWrite means the output sink could not be created or written.
	ErrVideoWrite = errors.New("video output unwritable")

	// ErrStreamEndedEarly marks a decode failure part way through the
	// source. Jobs treat it as the end of the stream.
	ErrStreamEndedEarly = errors.New("stream ended early")

	// ErrFrameTooSmall means a frame cannot hold a single glyph cell.
	ErrFrameTooSmall = errors.New("frame smaller than one glyph cell")
)

// Fatal reports whether err aborts a job. Glyph rejections and early
// stream ends are recovered locally and are not fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrGlyphRejected) && !errors.Is(err, ErrStreamEndedEarly)
}

// Kind returns the sentinel error kind wrapped by err, or nil if err
// carries none of them. Context cancellation is returned as-is.
func Kind(err error) error {
	for _, kind := range []error{
		ErrFontLoad, ErrGlyphRejected, ErrProfileIO, ErrEmptyCharset,
		ErrVideoOpen, ErrVideoWrite, ErrStreamEndedEarly, ErrFrameTooSmall,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
