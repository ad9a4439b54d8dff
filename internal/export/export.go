// Package export writes rendered frames to video or image files.
package export

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Format selects the sink implementation.
type Format string

// Supported formats.
const (
	FormatFFmpeg Format = "ffmpeg"
	FormatPNG    Format = "png"
	FormatGIF    Format = "gif"
)

// Export errors.
var (
	ErrUnknownFormat = errors.New("export: unknown format")
	ErrInvalidFPS    = errors.New("export: fps must be positive")
	ErrNoOutput      = errors.New("export: output path is empty")
	ErrClosed        = errors.New("export: sink is closed")
)

// Sink accepts frames in export order.
type Sink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Config describes one export target. Width and Height are optional; when
// zero, the first frame's size is used for every frame.
type Config struct {
	Format     Format
	Path       string
	FPS        int
	Codec      string
	Width      int
	Height     int
	FFmpegPath string
}

// Validate checks the fields every sink needs.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFPS, c.FPS)
	}
	if c.Path == "" {
		return ErrNoOutput
	}
	switch c.Format {
	case FormatFFmpeg, FormatPNG, FormatGIF:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
}

// Open creates the sink for cfg.Format.
func Open(cfg Config) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Format {
	case FormatPNG:
		return newPNGSink(cfg)
	case FormatGIF:
		return newGIFSink(cfg)
	default:
		return newFFmpegSink(cfg, execLauncher(cfg.FFmpegPath)), nil
	}
}

// frameSize pins every frame of one export to a single size.
type frameSize struct {
	width, height int
}

// fit returns img as RGBA at the pinned size, resampling when it differs.
// The first call pins the size if none was configured.
func (s *frameSize) fit(img image.Image) *image.RGBA {
	b := img.Bounds()
	if s.width == 0 || s.height == 0 {
		s.width, s.height = b.Dx(), b.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if b.Dx() == s.width && b.Dy() == s.height {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
