package glyphreel

import (
	"fmt"
	"math"
)

// FrameSampler decimates a frame stream to a lower frame rate by keeping
// an evenly spaced subset of frames. It carries state between frames and
// must see every input frame, in order, from a single goroutine.
type FrameSampler struct {
	inRate  float64
	outRate float64
	ratio   float64
	acc     float64
}

// NewFrameSampler resolves the requested output rate against the input
// rate. An outRate of zero means "match the input"; the result is clamped
// to [1, floor(inRate)].
func NewFrameSampler(inRate, outRate float64) (*FrameSampler, error) {
	if !(inRate > 0) || math.IsInf(inRate, 0) {
		return nil, fmt.Errorf("invalid input frame rate %v", inRate)
	}
	if outRate < 0 || math.IsNaN(outRate) {
		return nil, fmt.Errorf("invalid output frame rate %v", outRate)
	}
	if outRate == 0 {
		outRate = inRate
	}
	upper := math.Max(1, math.Floor(inRate))
	outRate = math.Min(math.Max(outRate, 1), upper)

	ratio := inRate / outRate
	if ratio < 1 {
		// Only reachable for input rates below 1 fps.
		ratio, outRate = 1, inRate
	}
	return &FrameSampler{inRate: inRate, outRate: outRate, ratio: ratio}, nil
}

// Keep is called once per input frame and reports whether the frame is
// part of the output.
func (s *FrameSampler) Keep() bool {
	if s.ratio == 1 {
		return true
	}
	s.acc++
	if s.acc >= s.ratio {
		s.acc -= s.ratio
		return true
	}
	return false
}

// Ratio returns input frames per output frame.
func (s *FrameSampler) Ratio() float64 { return s.ratio }

// OutputRate returns the resolved output frame rate.
func (s *FrameSampler) OutputRate() float64 { return s.outRate }

// InputRate returns the input frame rate.
func (s *FrameSampler) InputRate() float64 { return s.inRate }

// Expected returns how many frames a stream of total input frames yields.
func (s *FrameSampler) Expected(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(total) / s.ratio))
}

// Reset clears the accumulator so the sampler can start a new stream.
func (s *FrameSampler) Reset() {
	s.acc = 0
}
