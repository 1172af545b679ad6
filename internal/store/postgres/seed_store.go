package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// SeedStore implements domain.SeedStore using PostgreSQL.
type SeedStore struct {
	pool *pgxpool.Pool
}

// NewSeedStore creates a new SeedStore.
func NewSeedStore(pool *pgxpool.Pool) *SeedStore {
	return &SeedStore{pool: pool}
}

// SaveReport inserts the run row and one row per market outcome in a single
// transaction. Saving the same run twice replaces its outcomes.
func (s *SeedStore) SaveReport(ctx context.Context, report domain.SeedReport) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO seed_runs (run_id, mint_url, started_at, finished_at, succeeded, failed, aborted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			succeeded   = EXCLUDED.succeeded,
			failed      = EXCLUDED.failed,
			aborted     = EXCLUDED.aborted`,
		report.RunID, report.MintURL, report.StartedAt, report.FinishedAt,
		report.Succeeded(), report.Failed(), report.Aborted,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert seed_run %s: %w", report.RunID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM seed_market_outcomes WHERE run_id = $1`, report.RunID); err != nil {
		return fmt.Errorf("postgres: clear outcomes %s: %w", report.RunID, err)
	}

	batch := &pgx.Batch{}
	for i, o := range report.Outcomes {
		row, err := toOutcomeRow(o)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO seed_market_outcomes
				(run_id, position, event_id, description, state, condition_id, keysets,
				 failure_stage, failure_status, failure_body, failure_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			report.RunID, i, o.EventID, o.Description, string(o.State), o.ConditionID, row.keysets,
			row.stage, row.status, row.body, row.reason,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("postgres: insert outcomes %s: %w", report.RunID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit seed_run %s: %w", report.RunID, err)
	}
	return nil
}

// ListRuns returns runs newest first.
func (s *SeedStore) ListRuns(ctx context.Context, opts domain.ListOpts) ([]domain.SeedRun, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, mint_url, started_at, finished_at, succeeded, failed, aborted
		FROM seed_runs`
	args := []any{}
	if opts.Since != nil {
		query += ` WHERE started_at >= $1`
		args = append(args, *opts.Since)
	}
	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, opts.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list seed_runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SeedRun
	for rows.Next() {
		var r domain.SeedRun
		if err := rows.Scan(&r.RunID, &r.MintURL, &r.StartedAt, &r.FinishedAt, &r.Succeeded, &r.Failed, &r.Aborted); err != nil {
			return nil, fmt.Errorf("postgres: scan seed_run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list seed_runs rows: %w", err)
	}
	return runs, nil
}

// ListOutcomes returns the market outcomes of a run in seeding order. It
// returns domain.ErrNotFound for an unknown run.
func (s *SeedStore) ListOutcomes(ctx context.Context, runID string) ([]domain.MarketOutcome, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM seed_runs WHERE run_id = $1)`, runID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: check seed_run %s: %w", runID, err)
	}
	if !exists {
		return nil, fmt.Errorf("postgres: seed_run %s: %w", runID, domain.ErrNotFound)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT event_id, description, state, condition_id, keysets,
		       failure_stage, failure_status, failure_body, failure_reason
		FROM seed_market_outcomes
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list outcomes %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []domain.MarketOutcome
	for rows.Next() {
		var (
			o     domain.MarketOutcome
			state string
			row   outcomeRow
		)
		if err := rows.Scan(&o.EventID, &o.Description, &state, &o.ConditionID, &row.keysets,
			&row.stage, &row.status, &row.body, &row.reason); err != nil {
			return nil, fmt.Errorf("postgres: scan outcome: %w", err)
		}
		o.State = domain.MarketState(state)
		if err := row.apply(&o); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list outcomes rows: %w", err)
	}
	return outcomes, nil
}

// outcomeRow holds the columns of a market outcome that need conversion.
type outcomeRow struct {
	keysets []byte
	stage   string
	status  int
	body    string
	reason  string
}

func toOutcomeRow(o domain.MarketOutcome) (outcomeRow, error) {
	var row outcomeRow
	if o.Keysets != nil {
		b, err := json.Marshal(o.Keysets)
		if err != nil {
			return row, fmt.Errorf("postgres: marshal keysets: %w", err)
		}
		row.keysets = b
	}
	if f := o.Failure; f != nil {
		row.stage = string(f.Stage)
		row.status = f.Status
		row.body = f.Body
		row.reason = f.Reason
	}
	return row, nil
}

func (row outcomeRow) apply(o *domain.MarketOutcome) error {
	if len(row.keysets) > 0 {
		if err := json.Unmarshal(row.keysets, &o.Keysets); err != nil {
			return fmt.Errorf("postgres: unmarshal keysets: %w", err)
		}
	}
	if row.stage != "" {
		o.Failure = &domain.MarketFailure{
			Stage:  domain.Stage(row.stage),
			Status: row.status,
			Body:   row.body,
			Reason: row.reason,
		}
	}
	return nil
}

// Compile-time interface check.
var _ domain.SeedStore = (*SeedStore)(nil)
