package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFPS        = flag.Int("fps", 0, "Export frames per second")
	flagOutput     = flag.String("output", "", "Export output path")
	flagFormat     = flag.String("format", "", "Export format: ffmpeg, png or gif")
	flagScript     = flag.String("script", "", "Action script to run on startup")
	flagWatch      = flag.Bool("watch", false, "Re-run the action script when it changes")
	flagHeadless   = flag.Bool("headless", false, "Exit after the action script finishes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// RunOptions are the flags that select what the studio does on startup.
// They are not persisted with the config.
type RunOptions struct {
	Script   string
	Watch    bool
	Headless bool
}

// Run returns the startup options given on the command line.
func Run() RunOptions {
	return RunOptions{
		Script:   *flagScript,
		Watch:    *flagWatch,
		Headless: *flagHeadless,
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagFPS > 0 {
		cfg.Export.FPS = *flagFPS
	}
	if *flagOutput != "" {
		cfg.Export.Output = *flagOutput
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
}
