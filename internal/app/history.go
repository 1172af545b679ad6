package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// ErrHistoryDisabled is returned by history queries when no seed store is
// configured.
var ErrHistoryDisabled = errors.New("app: seed history requires supabase.enabled")

// History prints the most recent seeding runs.
func (a *App) History(ctx context.Context, limit int) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	return a.history(ctx, deps.SeedStore, limit)
}

// ShowRun prints the market outcomes of one seeding run.
func (a *App) ShowRun(ctx context.Context, runID string) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	return a.showRun(ctx, deps.SeedStore, runID)
}

func (a *App) history(ctx context.Context, store domain.SeedStore, limit int) error {
	if store == nil {
		return ErrHistoryDisabled
	}
	runs, err := store.ListRuns(ctx, domain.ListOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("app: list runs: %w", err)
	}
	writeRuns(a.stdout, runs)
	return nil
}

func (a *App) showRun(ctx context.Context, store domain.SeedStore, runID string) error {
	if store == nil {
		return ErrHistoryDisabled
	}
	outcomes, err := store.ListOutcomes(ctx, runID)
	if err != nil {
		return fmt.Errorf("app: list outcomes: %w", err)
	}
	writeOutcomes(a.stdout, outcomes)
	return nil
}

func writeRuns(w io.Writer, runs []domain.SeedRun) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "STARTED", "MINT", "SEEDED", "FAILED", "ABORTED")
	for _, r := range runs {
		aborted := "-"
		if r.Aborted != "" {
			aborted = r.Aborted
		}
		t.Row(r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.MintURL,
			strconv.Itoa(r.Succeeded), strconv.Itoa(r.Failed), aborted)
	}
	fmt.Fprintln(w, t.Render())
}

func writeOutcomes(w io.Writer, outcomes []domain.MarketOutcome) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("EVENT", "STATE", "CONDITION", "DETAIL")
	for _, o := range outcomes {
		condition := o.ConditionID
		if condition == "" {
			condition = "-"
		}
		detail := "-"
		switch {
		case o.Keysets != nil:
			detail = o.Keysets.Format(nil)
		case o.Failure != nil && o.Failure.Status != 0:
			detail = fmt.Sprintf("%s: HTTP %d %s", o.Failure.Stage, o.Failure.Status, o.Failure.Body)
		case o.Failure != nil:
			detail = fmt.Sprintf("%s: %s", o.Failure.Stage, o.Failure.Reason)
		}
		t.Row(o.EventID, string(o.State), condition, detail)
	}
	fmt.Fprintln(w, t.Render())
}
