package export

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/logger"
)

// codecs maps short codec names to ffmpeg encoders. Unknown names are
// passed through unchanged.
var codecs = map[string]string{
	"vp9":  "libvpx-vp9",
	"vp8":  "libvpx",
	"h264": "libx264",
	"av1":  "libaom-av1",
}

// Encoder returns the ffmpeg encoder name for codec.
func Encoder(codec string) string {
	if codec == "" {
		codec = "vp9"
	}
	if enc, ok := codecs[strings.ToLower(codec)]; ok {
		return enc
	}
	return codec
}

// VideoPath appends .webm when path has no extension of that name.
func VideoPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".webm") {
		return path
	}
	return path + ".webm"
}

// launcher starts the encoder with args and returns its stdin and a wait
// function that reports the process exit.
type launcher func(args []string) (io.WriteCloser, func() error, error)

func execLauncher(binary string) launcher {
	if binary == "" {
		binary = "ffmpeg"
	}
	return func(args []string) (io.WriteCloser, func() error, error) {
		cmd := exec.Command(binary, args...)
		var stderr strings.Builder
		cmd.Stderr = &stderr

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, nil, fmt.Errorf("start %s: %w", binary, err)
		}
		wait := func() error {
			if err := cmd.Wait(); err != nil {
				return fmt.Errorf("%s: %w: %s", binary, err, lastLine(stderr.String()))
			}
			return nil
		}
		return stdin, wait, nil
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ffmpegSink pipes raw RGBA frames into an ffmpeg process. The process is
// started on the first frame, once the frame size is known.
type ffmpegSink struct {
	cfg    Config
	path   string
	size   frameSize
	launch launcher

	stdin  io.WriteCloser
	wait   func() error
	frames int
	closed bool
	log    *zap.Logger
}

func newFFmpegSink(cfg Config, launch launcher) *ffmpegSink {
	return &ffmpegSink{
		cfg:    cfg,
		path:   VideoPath(cfg.Path),
		size:   frameSize{width: cfg.Width, height: cfg.Height},
		launch: launch,
		log:    logger.Named("export"),
	}
}

func (s *ffmpegSink) args() []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", s.size.width, s.size.height),
		"-r", strconv.Itoa(s.cfg.FPS),
		"-i", "-",
		"-an",
		"-c:v", Encoder(s.cfg.Codec),
		"-pix_fmt", "yuva420p",
		s.path,
	}
}

func (s *ffmpegSink) WriteFrame(img image.Image) error {
	if s.closed {
		return ErrClosed
	}
	frame := s.size.fit(img)

	if s.stdin == nil {
		args := s.args()
		stdin, wait, err := s.launch(args)
		if err != nil {
			return fmt.Errorf("launch encoder: %w", err)
		}
		s.stdin, s.wait = stdin, wait
		s.log.Info("encoder started",
			zap.String("output", s.path),
			zap.Strings("args", args),
		)
	}

	if _, err := s.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", s.frames+1, err)
	}
	s.frames++
	return nil
}

func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stdin == nil {
		return nil
	}

	err := s.stdin.Close()
	err = multierr.Append(err, s.wait())
	s.log.Info("encoder finished",
		zap.String("output", s.path),
		zap.Int("frames", s.frames),
		zap.Error(err),
	)
	return err
}
