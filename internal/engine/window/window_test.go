package window

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestFlags(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		set     uint32
		cleared uint32
	}{
		{"windowed", Config{}, sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE, sdl.WINDOW_FULLSCREEN | sdl.WINDOW_HIDDEN},
		{"fullscreen", Config{Fullscreen: true}, sdl.WINDOW_OPENGL | sdl.WINDOW_FULLSCREEN, sdl.WINDOW_HIDDEN},
		{"hidden", Config{Hidden: true, Fullscreen: true}, sdl.WINDOW_OPENGL | sdl.WINDOW_HIDDEN, sdl.WINDOW_FULLSCREEN | sdl.WINDOW_RESIZABLE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.flags()
			if got&tt.set != tt.set {
				t.Errorf("flags %#x missing %#x", got, tt.set)
			}
			if got&tt.cleared != 0 {
				t.Errorf("flags %#x should not contain %#x", got, got&tt.cleared)
			}
		})
	}
}

func TestSwapInterval(t *testing.T) {
	if got := (Config{VSync: true}).swapInterval(); got != 1 {
		t.Errorf("vsync interval = %d, want 1", got)
	}
	if got := (Config{VSync: true, Hidden: true}).swapInterval(); got != 0 {
		t.Errorf("hidden interval = %d, want 0", got)
	}
	if got := (Config{}).swapInterval(); got != 0 {
		t.Errorf("no-vsync interval = %d, want 0", got)
	}
}

func TestNewRejectsEmptySize(t *testing.T) {
	if _, err := New(Config{Width: 0, Height: 480}); err == nil {
		t.Fatal("expected an error for a zero width")
	}
}
