package main

import (
	"errors"
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"

	"github.com/wbrown/glyphreel"
)

// videoSource decodes a video file with OpenCV.
type videoSource struct {
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	info glyphreel.SourceInfo
}

func openVideo(path string) (*videoSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", glyphreel.ErrVideoOpen, path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: %s: cannot open", glyphreel.ErrVideoOpen, path)
	}
	return &videoSource{
		cap: cap,
		mat: gocv.NewMat(),
		info: glyphreel.SourceInfo{
			Width:      int(cap.Get(gocv.VideoCaptureFrameWidth)),
			Height:     int(cap.Get(gocv.VideoCaptureFrameHeight)),
			FrameRate:  cap.Get(gocv.VideoCaptureFPS),
			FrameCount: int(cap.Get(gocv.VideoCaptureFrameCount)),
		},
	}, nil
}

func (s *videoSource) Info() glyphreel.SourceInfo {
	return s.info
}

// Next returns io.EOF once the capture stops yielding frames. OpenCV does
// not tell a truncated stream from its end.
func (s *videoSource) Next() (image.Image, error) {
	if ok := s.cap.Read(&s.mat); !ok {
		return nil, io.EOF
	}
	if s.mat.Empty() {
		return nil, errors.New("decoded an empty frame")
	}
	return s.mat.ToImage()
}

func (s *videoSource) Close() error {
	s.mat.Close()
	return s.cap.Close()
}

// videoSink encodes canvases with OpenCV.
type videoSink struct {
	w    *gocv.VideoWriter
	gray gocv.Mat
	bgr  gocv.Mat
}

func createVideo(path, codec string, spec glyphreel.SinkSpec) (*videoSink, error) {
	w, err := gocv.VideoWriterFile(path, codec, spec.FrameRate, spec.Width, spec.Height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", glyphreel.ErrVideoWrite, path, err)
	}
	if !w.IsOpened() {
		w.Close()
		return nil, fmt.Errorf("%w: %s: codec %q unavailable", glyphreel.ErrVideoWrite, path, codec)
	}
	return &videoSink{w: w, bgr: gocv.NewMat()}, nil
}

func (s *videoSink) WriteFrame(img image.Image) error {
	gray, ok := img.(*image.Gray)
	if !ok {
		mat, err := gocv.ImageToMatRGB(img)
		if err != nil {
			return err
		}
		defer mat.Close()
		return s.w.Write(mat)
	}
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return err
	}
	defer mat.Close()
	gocv.CvtColor(mat, &s.bgr, gocv.ColorGrayToBGR)
	return s.w.Write(s.bgr)
}

func (s *videoSink) Close() error {
	s.bgr.Close()
	return s.w.Close()
}
