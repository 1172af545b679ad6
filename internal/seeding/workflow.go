// Package seeding drives the registration of catalog markets with a mint:
// build the oracle announcement, register the condition, then register the
// collateral partition. Markets are seeded one at a time and independently.
package seeding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// Workflow seeds a catalog of markets. A market whose registration is
// rejected by the mint is recorded as failed and the run moves on; transport
// and decode failures abort the run.
type Workflow struct {
	mint    domain.Mint
	oracle  domain.AnnouncementBuilder
	console *Console
	mintURL string
	logger  *slog.Logger
}

// NewWorkflow creates a Workflow. mintURL is only recorded in the report.
func NewWorkflow(mint domain.Mint, oracle domain.AnnouncementBuilder, console *Console, mintURL string, logger *slog.Logger) *Workflow {
	return &Workflow{
		mint:    mint,
		oracle:  oracle,
		console: console,
		mintURL: mintURL,
		logger:  logger.With(slog.String("component", "seeding")),
	}
}

// Run seeds markets in order and returns the per-market report. The returned
// error is non-nil only for run-fatal failures; the report then holds the
// outcomes produced before the abort.
func (w *Workflow) Run(ctx context.Context, markets []domain.MarketDefinition) (domain.SeedReport, error) {
	report := domain.SeedReport{
		RunID:     uuid.NewString(),
		MintURL:   w.mintURL,
		StartedAt: time.Now().UTC(),
	}
	logger := w.logger.With(slog.String("run_id", report.RunID))

	abort := func(err error) (domain.SeedReport, error) {
		report.FinishedAt = time.Now().UTC()
		report.Aborted = err.Error()
		w.console.Aborted(err)
		logger.ErrorContext(ctx, "seeding aborted",
			slog.Int("seeded", report.Succeeded()),
			slog.Int("failed", report.Failed()),
			slog.String("error", err.Error()),
		)
		return report, err
	}

	if err := domain.ValidateCatalog(markets); err != nil {
		return abort(fmt.Errorf("seeding: %w", err))
	}

	logger.InfoContext(ctx, "seeding started",
		slog.String("mint_url", w.mintURL),
		slog.Int("markets", len(markets)),
	)

	for _, m := range markets {
		if err := ctx.Err(); err != nil {
			return abort(fmt.Errorf("seeding: %w", err))
		}
		outcome, err := w.seedMarket(ctx, m)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			return abort(fmt.Errorf("seeding: %s: %w", m.EventID, err))
		}
	}

	report.FinishedAt = time.Now().UTC()
	w.console.Complete()
	logger.InfoContext(ctx, "seeding complete",
		slog.Int("seeded", report.Succeeded()),
		slog.Int("failed", report.Failed()),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// seedMarket walks one market through the state machine. The error is
// reserved for run-fatal failures.
func (w *Workflow) seedMarket(ctx context.Context, m domain.MarketDefinition) (domain.MarketOutcome, error) {
	out := domain.MarketOutcome{
		Market:      m,
		EventID:     m.EventID,
		Description: m.Description,
		State:       domain.MarketPending,
	}
	w.console.Seeding(m.Description)

	ann, err := w.oracle.BuildAnnouncement(m.Outcomes, m.EventID, m.Maturity)
	if err != nil {
		return w.fail(ctx, out, domain.MarketFailure{Stage: domain.StageAnnouncement, Reason: err.Error()}), nil
	}
	out.State = domain.MarketAnnouncementBuilt
	w.logger.DebugContext(ctx, "announcement built",
		slog.String("event_id", m.EventID),
		slog.String("oracle_pubkey", ann.OraclePubKey),
	)

	conditionID, err := w.mint.RegisterCondition(ctx, domain.RegisterConditionRequest{
		Threshold:     1,
		Description:   m.Description,
		Announcements: []string{ann.Value},
		ConditionType: domain.ConditionTypeEnum,
	})
	if err != nil {
		return w.mintFailure(ctx, out, domain.StageCondition, err)
	}
	out.State = domain.MarketConditionRegistered
	out.ConditionID = conditionID
	w.console.ConditionID(conditionID)

	partition := make([]string, len(m.Outcomes))
	copy(partition, m.Outcomes)
	keysets, err := w.mint.RegisterPartition(ctx, conditionID, domain.RegisterPartitionRequest{
		Collateral:         domain.CollateralSat,
		Partition:          partition,
		ParentCollectionID: domain.RootCollectionID,
	})
	if err != nil {
		return w.mintFailure(ctx, out, domain.StagePartition, err)
	}
	out.State = domain.MarketPartitionRegistered
	out.Keysets = keysets
	w.console.Keysets(keysets, m.Outcomes)

	w.logger.InfoContext(ctx, "market seeded",
		slog.String("event_id", m.EventID),
		slog.String("condition_id", conditionID),
		slog.Int("keysets", len(keysets)),
	)
	return out, nil
}

// mintFailure contains registration rejections to the market and passes
// every other error up as run-fatal.
func (w *Workflow) mintFailure(ctx context.Context, out domain.MarketOutcome, stage domain.Stage, err error) (domain.MarketOutcome, error) {
	var regErr *domain.RegistrationError
	if errors.As(err, &regErr) {
		return w.fail(ctx, out, domain.MarketFailure{
			Stage:  stage,
			Status: regErr.Status,
			Body:   regErr.Body,
		}), nil
	}
	out.State = domain.MarketFailed
	out.Failure = &domain.MarketFailure{Stage: stage, Reason: err.Error()}
	return out, err
}

func (w *Workflow) fail(ctx context.Context, out domain.MarketOutcome, f domain.MarketFailure) domain.MarketOutcome {
	out.State = domain.MarketFailed
	out.Failure = &f
	w.console.Failed(f)
	w.logger.WarnContext(ctx, "market failed",
		slog.String("event_id", out.EventID),
		slog.String("stage", string(f.Stage)),
		slog.Int("status", f.Status),
		slog.String("body", f.Body),
		slog.String("reason", f.Reason),
	)
	return out
}
