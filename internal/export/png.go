package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// pngSink writes one numbered file per frame into a directory.
type pngSink struct {
	dir    string
	size   frameSize
	frames int
	closed bool
}

func newPNGSink(cfg Config) (*pngSink, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &pngSink{
		dir:  cfg.Path,
		size: frameSize{width: cfg.Width, height: cfg.Height},
	}, nil
}

// FrameName returns the file name of the n-th frame, counting from 1.
func FrameName(n int) string {
	return fmt.Sprintf("frame_%05d.png", n)
}

func (s *pngSink) WriteFrame(img image.Image) error {
	if s.closed {
		return ErrClosed
	}
	frame := s.size.fit(img)
	name := filepath.Join(s.dir, FrameName(s.frames+1))

	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, frame); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *pngSink) Close() error {
	s.closed = true
	return nil
}
