// Package scheduler drives the registry from sampled keyframes, for a single
// preview frame or for a full export run.
//
// Everything here runs on the thread that owns the GL context. Export is
// strictly sequential: a frame's buffers are updated, drawn and captured
// before the next frame's updates begin.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/export"
	"github.com/Faultbox/keyframe-studio/internal/logger"
	"github.com/Faultbox/keyframe-studio/internal/scene"
)

// Scheduler errors.
var (
	ErrNotEnoughKeyframes = errors.New("export needs at least two keyframes")
	ErrInvalidRange       = errors.New("export start is after end")
	ErrAborted            = errors.New("export aborted")
)

// Host renders and reads back the current buffers.
type Host interface {
	// Redraw composes a full frame from the registry and flushes it, so a
	// following Capture sees every update.
	Redraw() error
	Capture() (image.Image, error)
}

// OpenFunc creates an export sink.
type OpenFunc func(export.Config) (export.Sink, error)

// ExportRequest is one export run. Start and End are inclusive.
type ExportRequest struct {
	Start int
	End   int
	Sink  export.Config

	// Progress, when set, is called after each frame is written.
	Progress func(frame, done, total int)
}

// Result summarizes a finished export.
type Result struct {
	Frames   int
	Restored int
}

// Scheduler updates registry buffers from the scene's keyframes.
type Scheduler struct {
	scene    *scene.Scene
	registry *registry.Registry
	host     Host
	open     OpenFunc

	abort     atomic.Bool
	exporting atomic.Bool
	log       *zap.Logger
}

// New creates a scheduler. Sinks are opened with export.Open.
func New(s *scene.Scene, reg *registry.Registry, host Host) *Scheduler {
	return &Scheduler{
		scene:    s,
		registry: reg,
		host:     host,
		open:     export.Open,
		log:      logger.Named("scheduler"),
	}
}

// SetOpener replaces the sink factory.
func (s *Scheduler) SetOpener(open OpenFunc) {
	s.open = open
}

// Abort asks a running export to stop before its next frame. It is safe to
// call from any goroutine.
func (s *Scheduler) Abort() {
	s.abort.Store(true)
}

// Exporting reports whether an export is running.
func (s *Scheduler) Exporting() bool {
	return s.exporting.Load()
}

// Preview samples every object at frame, uploads the results and redraws.
// It stops at the first object that fails.
func (s *Scheduler) Preview(frame int) error {
	if err := s.update(frame); err != nil {
		return err
	}
	return s.host.Redraw()
}

func (s *Scheduler) update(frame int) error {
	for _, o := range s.scene.Objects() {
		world, err := o.WorldVertices(frame)
		if err != nil {
			return fmt.Errorf("object %q frame %d: %w", o.Name, frame, err)
		}
		if err := s.registry.Update(o.Slot, world); err != nil {
			return fmt.Errorf("object %q frame %d: %w", o.Name, frame, err)
		}
	}
	return nil
}

// CheckExport validates req against the scene without touching the GPU.
func (s *Scheduler) CheckExport(req ExportRequest) error {
	if n := s.scene.Timeline.Len(); n < 2 {
		return fmt.Errorf("%w: have %d", ErrNotEnoughKeyframes, n)
	}
	if req.Start > req.End {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, req.Start, req.End)
	}
	if err := s.scene.Timeline.CheckRange(req.Start); err != nil {
		return err
	}
	if err := s.scene.Timeline.CheckRange(req.End); err != nil {
		return err
	}
	return req.Sink.Validate()
}

// Export renders every frame in [req.Start, req.End] into a sink. Whatever
// happens, the scene's active frame is previewed again afterwards so the
// buffers match what the editor shows.
func (s *Scheduler) Export(ctx context.Context, req ExportRequest) (res Result, err error) {
	if err := s.CheckExport(req); err != nil {
		return Result{}, err
	}
	s.abort.Store(false)
	s.exporting.Store(true)
	defer s.exporting.Store(false)

	sink, err := s.open(req.Sink)
	if err != nil {
		return Result{}, fmt.Errorf("open sink: %w", err)
	}

	restore := s.scene.Active
	res.Restored = restore
	total := req.End - req.Start + 1

	s.log.Info("export started",
		zap.Int("start", req.Start),
		zap.Int("end", req.End),
		zap.Int("fps", req.Sink.FPS),
		zap.String("format", string(req.Sink.Format)),
		zap.String("output", req.Sink.Path),
	)

	defer func() {
		err = multierr.Append(err, sink.Close())
		if perr := s.Preview(restore); perr != nil {
			err = multierr.Append(err, fmt.Errorf("restore frame %d: %w", restore, perr))
		}
		if err != nil {
			s.log.Warn("export failed", zap.Int("frames", res.Frames), zap.Error(err))
			return
		}
		s.log.Info("export finished", zap.Int("frames", res.Frames), zap.Int("restored", restore))
	}()

	for frame := req.Start; frame <= req.End; frame++ {
		if s.abort.Load() {
			return res, fmt.Errorf("%w at frame %d", ErrAborted, frame)
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w at frame %d: %w", ErrAborted, frame, err)
		}

		if err := s.exportFrame(frame, sink); err != nil {
			return res, err
		}
		res.Frames++
		if req.Progress != nil {
			req.Progress(frame, res.Frames, total)
		}
	}
	return res, nil
}

// exportFrame runs update, redraw, capture, write in that order.
func (s *Scheduler) exportFrame(frame int, sink export.Sink) error {
	if err := s.update(frame); err != nil {
		return err
	}
	if err := s.host.Redraw(); err != nil {
		return fmt.Errorf("redraw frame %d: %w", frame, err)
	}
	img, err := s.host.Capture()
	if err != nil {
		return fmt.Errorf("capture frame %d: %w", frame, err)
	}
	if err := sink.WriteFrame(img); err != nil {
		return fmt.Errorf("write frame %d: %w", frame, err)
	}
	s.log.Debug("frame exported", zap.Int("frame", frame))
	return nil
}
