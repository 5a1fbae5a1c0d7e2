package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// audioMuxer combines the rendered video with the audio of the source
// into the final output. Whatever happens, the rendered video ends up at
// the output path.
type audioMuxer struct {
	video  string
	audio  string
	output string
	logger logrus.FieldLogger
}

type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

func hasAudio(path string) (bool, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return false, err
	}
	var res probeResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return false, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	for _, s := range res.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

func (m *audioMuxer) Mux(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return m.keepVideo(err)
	}
	ok, err := hasAudio(m.audio)
	if err != nil {
		return m.keepVideo(fmt.Errorf("probe %s: %w", m.audio, err))
	}
	if !ok {
		m.logger.Info("source has no audio")
		return m.keepVideo(nil)
	}

	video := ffmpeg.Input(m.video).Video()
	audio := ffmpeg.Input(m.audio).Audio()
	err = ffmpeg.Output([]*ffmpeg.Stream{video, audio}, m.output, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      "aac",
		"shortest": "",
	}).OverWriteOutput().Silent(true).Run()
	if err != nil {
		return m.keepVideo(fmt.Errorf("ffmpeg: %w", err))
	}
	m.logger.WithField("output", m.output).Info("muxed audio")
	return os.Remove(m.video)
}

// keepVideo moves the silent video to the output path and returns cause.
func (m *audioMuxer) keepVideo(cause error) error {
	if err := os.Rename(m.video, m.output); err != nil {
		if cause == nil {
			return err
		}
		return fmt.Errorf("%w (and %w)", cause, err)
	}
	return cause
}

// salvage moves a partial silent video to the output path after the job
// stopped before muxing. It does nothing when no video was written.
func (m *audioMuxer) salvage() {
	if _, err := os.Stat(m.video); err != nil {
		return
	}
	if err := m.keepVideo(nil); err != nil {
		m.logger.WithError(err).WithField("video", m.video).Warn("partial video left in place")
		return
	}
	m.logger.WithField("output", m.output).Info("kept partial video without audio")
}
