// Package window opens the studio viewport: one SDL2 window with an OpenGL
// 4.1 core context. Headless runs open the same window hidden so export can
// still render through the context.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/logger"
)

func init() {
	// GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// glAttributes must be set before the window is created. 4.1 core is the
// newest profile macOS provides.
var glAttributes = []struct {
	name  string
	attr  sdl.GLattr
	value int
}{
	{"major version", sdl.GL_CONTEXT_MAJOR_VERSION, 4},
	{"minor version", sdl.GL_CONTEXT_MINOR_VERSION, 1},
	{"profile", sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	{"double buffer", sdl.GL_DOUBLEBUFFER, 1},
	{"depth size", sdl.GL_DEPTH_SIZE, 24},
}

// Config describes the viewport window.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	// Hidden creates the window without showing it, for scripted export.
	Hidden bool
}

// flags returns the SDL window flags for c. A hidden window is never
// fullscreen.
func (c Config) flags() uint32 {
	flags := uint32(sdl.WINDOW_OPENGL)
	if c.Hidden {
		return flags | sdl.WINDOW_HIDDEN
	}
	flags |= sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI
	if c.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	return flags
}

// swapInterval is 1 for vsync and 0 otherwise. Hidden windows never wait
// for vblank.
func (c Config) swapInterval() int {
	if c.VSync && !c.Hidden {
		return 1
	}
	return 0
}

// Window owns the SDL window and its GL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

// New initializes SDL video, creates the window and makes its GL context
// current. On failure everything acquired so far is released.
func New(cfg Config) (*Window, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("window size %dx%d: must be positive", cfg.Width, cfg.Height)
	}
	w := &Window{
		config: cfg,
		log:    logger.Named("window"),
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}
	for _, a := range glAttributes {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("setting GL %s: %w", a.name, err)
		}
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		cfg.flags(),
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := sdl.GLSetSwapInterval(cfg.swapInterval()); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", cfg.swapInterval()), zap.Error(err))
	}

	dw, dh := w.DrawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("hidden", cfg.Hidden),
	)
	return w, nil
}

// Close destroys the context and window and shuts SDL down.
func (w *Window) Close() {
	w.log.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// SwapBuffers presents the default framebuffer.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// GetSize returns the window size in screen points, the space mouse events
// are reported in.
func (w *Window) GetSize() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// DrawableSize returns the default framebuffer size in pixels. It differs
// from GetSize on high-DPI displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetRelativeMouse captures the pointer for mouse-look.
func (w *Window) SetRelativeMouse(on bool) {
	sdl.SetRelativeMouseMode(on)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
