// Package main is the entry point for Keyframe Studio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/app"
	"github.com/Faultbox/keyframe-studio/internal/config"
	"github.com/Faultbox/keyframe-studio/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Keyframe Studio ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	opts := config.Run()
	if opts.Headless && opts.Script == "" {
		logger.Error("--headless needs --script")
		os.Exit(2)
	}

	// Ctrl+C cancels a running export and stops the loop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(cfg, opts)
	if err != nil {
		logger.Error("failed to create studio", zap.Error(err))
		os.Exit(1)
	}

	err = a.Run(ctx)
	a.Close()
	if err != nil {
		logger.Error("studio error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("studio closed normally")
}
