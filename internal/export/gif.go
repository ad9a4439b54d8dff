package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"

	"golang.org/x/image/draw"
)

// gifSink buffers paletted frames and encodes the animation on Close.
type gifSink struct {
	path   string
	delay  int
	size   frameSize
	anim   gif.GIF
	closed bool
}

func newGIFSink(cfg Config) (*gifSink, error) {
	return &gifSink{
		path:  cfg.Path,
		delay: GIFDelay(cfg.FPS),
		size:  frameSize{width: cfg.Width, height: cfg.Height},
	}, nil
}

// GIFDelay converts fps to the per-frame delay in hundredths of a second.
// It never returns less than 1.
func GIFDelay(fps int) int {
	if fps <= 0 {
		return 1
	}
	return max(1, 100/fps)
}

func (s *gifSink) WriteFrame(img image.Image) error {
	if s.closed {
		return ErrClosed
	}
	frame := s.size.fit(img)

	p := image.NewPaletted(frame.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), frame, image.Point{})

	s.anim.Image = append(s.anim.Image, p)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	return nil
}

func (s *gifSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if len(s.anim.Image) == 0 {
		return nil
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := gif.EncodeAll(file, &s.anim); err != nil {
		file.Close()
		return fmt.Errorf("encoding GIF: %w", err)
	}
	return file.Close()
}
