package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// publish hands the finished report to every configured sink concurrently.
// Sink failures are logged and never change the outcome of the run.
func (a *App) publish(ctx context.Context, deps *Dependencies, report domain.SeedReport) {
	var g errgroup.Group
	logger := a.logger.With(slog.String("run_id", report.RunID))

	if deps.SeedStore != nil {
		g.Go(func() error {
			if err := deps.SeedStore.SaveReport(ctx, report); err != nil {
				logger.ErrorContext(ctx, "failed to save seed report", slog.String("error", err.Error()))
				return nil
			}
			logger.InfoContext(ctx, "seed report saved")
			return nil
		})
	}

	if deps.Archiver != nil {
		g.Go(func() error {
			key, err := deps.Archiver.Archive(ctx, report)
			if err != nil {
				logger.ErrorContext(ctx, "failed to archive seed report", slog.String("error", err.Error()))
				return nil
			}
			logger.InfoContext(ctx, "seed report archived", slog.String("key", key))
			return nil
		})
	}

	if deps.Notifier != nil {
		g.Go(func() error {
			if err := deps.Notifier.NotifyReport(ctx, report); err != nil {
				logger.ErrorContext(ctx, "failed to notify seed report", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	_ = g.Wait()
}
