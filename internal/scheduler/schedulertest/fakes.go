// Package schedulertest provides an in-memory Host and export sink.
package schedulertest

import (
	"image"
	"image/color"

	"github.com/Faultbox/keyframe-studio/internal/export"
)

// Host counts redraws and captures a tiny image whose red channel encodes
// the capture number.
type Host struct {
	Redraws  int
	Captures int
}

func (h *Host) Redraw() error {
	h.Redraws++
	return nil
}

func (h *Host) Capture() (image.Image, error) {
	h.Captures++
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: uint8(h.Captures), A: 255})
	return img, nil
}

// Sink keeps written frames in memory.
type Sink struct {
	Config export.Config
	Frames []image.Image
	Closed bool
}

func (s *Sink) WriteFrame(img image.Image) error {
	s.Frames = append(s.Frames, img)
	return nil
}

func (s *Sink) Close() error {
	s.Closed = true
	return nil
}

// Opener returns an open function that records every sink it creates.
func Opener(sinks *[]*Sink) func(export.Config) (export.Sink, error) {
	return func(cfg export.Config) (export.Sink, error) {
		s := &Sink{Config: cfg}
		*sinks = append(*sinks, s)
		return s, nil
	}
}
