// Package app provides the top-level lifecycle of the condition seeder. It
// wires the mint client, oracle and optional integrations, then runs either a
// seeding pass or a history query.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanyoungcy/seedconditions/internal/catalog"
	"github.com/alanyoungcy/seedconditions/internal/config"
	"github.com/alanyoungcy/seedconditions/internal/domain"
	"github.com/alanyoungcy/seedconditions/internal/seeding"
)

// publishTimeout bounds the post-run publishing fan-out. Publishing runs on a
// context detached from the run so an interrupted run is still recorded.
const publishTimeout = 30 * time.Second

// App is the root application object. It owns the configuration, logger, the
// console streams and a list of cleanup functions called in reverse order on
// shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	closers []func()
}

// New creates a new App. The human-readable report goes to stdout and
// stderr; structured logs go to logger.
func New(cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		stdout: stdout,
		stderr: stderr,
	}
}

// Seed wires dependencies and seeds the catalog onto the configured mint.
// It returns an error only for run-fatal failures; markets rejected by the
// mint are reported but do not fail the run.
func (a *App) Seed(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	return a.seed(ctx, deps, catalog.Markets())
}

func (a *App) seed(ctx context.Context, deps *Dependencies, markets []domain.MarketDefinition) error {
	if deps.LockManager != nil {
		unlock, err := deps.LockManager.Acquire(ctx, "seed:"+deps.MintURL, a.cfg.Seed.LockTTL.Duration)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				return fmt.Errorf("app: another seeding run is active for %s: %w", deps.MintURL, err)
			}
			return fmt.Errorf("app: acquire run lock: %w", err)
		}
		defer unlock()
	}

	console := seeding.NewConsole(a.stdout, a.stderr)
	wf := seeding.NewWorkflow(deps.Mint, deps.Oracle, console, deps.MintURL, a.logger)

	report, runErr := wf.Run(ctx, markets)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	a.publish(pubCtx, deps, report)

	return runErr
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
