// Package config handles studio configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config validation errors.
var (
	ErrInvalidTimeline = errors.New("invalid timeline range")
	ErrInvalidFPS      = errors.New("export fps must be between 1 and 120")
	ErrInvalidLights   = errors.New("max lights must be between 1 and 8")
	ErrInvalidFormat   = errors.New("unknown export format")
)

// ShaderLightSlots is the size of the light array in the phong shader.
const ShaderLightSlots = 8

// Config holds all studio settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Timeline TimelineConfig `yaml:"timeline" toml:"timeline"`
	Scene    SceneConfig    `yaml:"scene" toml:"scene"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width" toml:"width"`
	Height     int        `yaml:"height" toml:"height"`
	Fullscreen bool       `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool       `yaml:"vsync" toml:"vsync"`
	Background [3]float32 `yaml:"background" toml:"background"`
}

// TimelineConfig bounds the shared frame axis.
type TimelineConfig struct {
	MinFrame int `yaml:"min_frame" toml:"min_frame"`
	MaxFrame int `yaml:"max_frame" toml:"max_frame"`
}

// SceneConfig holds scene limits.
type SceneConfig struct {
	MaxLights int `yaml:"max_lights" toml:"max_lights"`
}

// CameraConfig holds the initial viewer camera.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position" toml:"position"`
	Yaw         float32    `yaml:"yaw" toml:"yaw"`
	Pitch       float32    `yaml:"pitch" toml:"pitch"`
	FOV         float32    `yaml:"fov" toml:"fov"`
	Speed       float32    `yaml:"speed" toml:"speed"`
	Sensitivity float32    `yaml:"sensitivity" toml:"sensitivity"`
}

// ExportConfig holds video export settings.
type ExportConfig struct {
	Format     string `yaml:"format" toml:"format"` // ffmpeg, png or gif
	FPS        int    `yaml:"fps" toml:"fps"`
	Codec      string `yaml:"codec" toml:"codec"`
	Output     string `yaml:"output" toml:"output"`
	FFmpegPath string `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	Width      int    `yaml:"width" toml:"width"` // 0 keeps the framebuffer size
	Height     int    `yaml:"height" toml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1200,
			Height:     800,
			Fullscreen: false,
			VSync:      true,
			Background: [3]float32{0.1, 0.1, 0.1},
		},
		Timeline: TimelineConfig{
			MinFrame: 1,
			MaxFrame: 100,
		},
		Scene: SceneConfig{
			MaxLights: 8,
		},
		Camera: CameraConfig{
			Position:    [3]float32{3, 3, 5},
			Yaw:         -135,
			Pitch:       -30,
			FOV:         45,
			Speed:       0.1,
			Sensitivity: 0.1,
		},
		Export: ExportConfig{
			Format:     "ffmpeg",
			FPS:        30,
			Codec:      "vp9",
			Output:     "animation.webm",
			FFmpegPath: "ffmpeg",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings that the studio cannot recover from at runtime.
func (c *Config) Validate() error {
	if c.Timeline.MinFrame < 1 || c.Timeline.MaxFrame < c.Timeline.MinFrame {
		return fmt.Errorf("%w: %d..%d", ErrInvalidTimeline, c.Timeline.MinFrame, c.Timeline.MaxFrame)
	}
	if c.Export.FPS < 1 || c.Export.FPS > 120 {
		return fmt.Errorf("%w: got %d", ErrInvalidFPS, c.Export.FPS)
	}
	if c.Scene.MaxLights < 1 || c.Scene.MaxLights > ShaderLightSlots {
		return fmt.Errorf("%w: got %d", ErrInvalidLights, c.Scene.MaxLights)
	}
	switch c.Export.Format {
	case "ffmpeg", "png", "gif":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Export.Format)
	}
	return nil
}
