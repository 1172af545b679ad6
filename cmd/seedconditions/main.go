// Command seedconditions registers the example prediction-market conditions
// and their outcome partitions on a conditional-token mint. It loads
// configuration, sets up logging and signal handling, and runs one seeding
// pass or a history query.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alanyoungcy/seedconditions/internal/app"
	"github.com/alanyoungcy/seedconditions/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file (optional)")
	history := flag.Int("history", 0, "list the N most recent seeding runs instead of seeding")
	runID := flag.String("run", "", "show the market outcomes of a stored seeding run")
	flag.Parse()

	// Structured logs go to stderr; stdout carries the seeding report.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Debug("configuration loaded", slog.Any("config", config.RedactedConfig(cfg)))

	application := app.New(cfg, logger, os.Stdout, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	switch {
	case *runID != "":
		err = application.ShowRun(ctx, *runID)
	case *history > 0:
		err = application.History(ctx, *history)
	default:
		logger.Info("seeder starting", slog.String("mint_url", cfg.Mint.BaseURL))
		err = application.Seed(ctx)
	}

	application.Close()
	stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
		} else {
			logger.Error("seeder exited with error", slog.String("error", err.Error()))
		}
		if *runID != "" || *history > 0 {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		closeLog()
		os.Exit(1)
	}
}

// newLogger builds the JSON logger at the configured level, teeing to a
// rotating file when log.file is set.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		w = io.MultiWriter(os.Stderr, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}
