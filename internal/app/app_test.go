package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/seedconditions/internal/config"
	"github.com/alanyoungcy/seedconditions/internal/domain"
)

type stubMint struct{}

func (stubMint) RegisterCondition(_ context.Context, req domain.RegisterConditionRequest) (string, error) {
	return "cond-" + req.Description, nil
}

func (stubMint) RegisterPartition(_ context.Context, conditionID string, req domain.RegisterPartitionRequest) (domain.Keysets, error) {
	ks := domain.Keysets{}
	for _, label := range req.Partition {
		ks[label] = conditionID + "-" + label
	}
	return ks, nil
}

type downMint struct{ stubMint }

func (downMint) RegisterCondition(context.Context, domain.RegisterConditionRequest) (string, error) {
	return "", fmt.Errorf("mint: register condition: %w: connection refused", domain.ErrTransport)
}

type stubOracle struct{}

func (stubOracle) BuildAnnouncement(outcomes []string, eventID string, maturity time.Time) (domain.OracleAnnouncement, error) {
	return domain.OracleAnnouncement{EventID: eventID, Outcomes: outcomes, Maturity: maturity, Value: "ann"}, nil
}

type stubLock struct {
	held     bool
	key      string
	ttl      time.Duration
	released bool
}

func (l *stubLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	if l.held {
		return nil, domain.ErrLockHeld
	}
	l.key, l.ttl = key, ttl
	return func() { l.released = true }, nil
}

type memStore struct {
	mu      sync.Mutex
	reports []domain.SeedReport
	err     error
}

func (s *memStore) SaveReport(_ context.Context, report domain.SeedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, report)
	return nil
}

func (s *memStore) ListRuns(_ context.Context, opts domain.ListOpts) ([]domain.SeedRun, error) {
	var runs []domain.SeedRun
	for _, r := range s.reports {
		runs = append(runs, domain.SeedRun{
			RunID: r.RunID, MintURL: r.MintURL, StartedAt: r.StartedAt, FinishedAt: r.FinishedAt,
			Succeeded: r.Succeeded(), Failed: r.Failed(), Aborted: r.Aborted,
		})
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}
	return runs, nil
}

func (s *memStore) ListOutcomes(_ context.Context, runID string) ([]domain.MarketOutcome, error) {
	for _, r := range s.reports {
		if r.RunID == runID {
			return r.Outcomes, nil
		}
	}
	return nil, domain.ErrNotFound
}

type recordingArchiver struct {
	mu   sync.Mutex
	runs []string
}

func (a *recordingArchiver) Archive(_ context.Context, report domain.SeedReport) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs = append(a.runs, report.RunID)
	return "seed-runs/" + report.RunID + ".json", nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	reports []domain.SeedReport
}

func (n *recordingNotifier) NotifyReport(_ context.Context, report domain.SeedReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
	return errors.New("webhook down")
}

func testMarkets() []domain.MarketDefinition {
	return []domain.MarketDefinition{
		{Description: "one", Outcomes: []string{"Yes", "No"}, EventID: "e1"},
		{Description: "two", Outcomes: []string{"A", "B", "C"}, EventID: "e2"},
	}
}

func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cfg := config.Defaults()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(&cfg, logger, &out, &errOut), &out, &errOut
}

func TestSeedPublishesReport(t *testing.T) {
	a, out, _ := newTestApp()
	lock := &stubLock{}
	store := &memStore{}
	archive := &recordingArchiver{}
	notifier := &recordingNotifier{}

	err := a.seed(context.Background(), &Dependencies{
		MintURL:     "http://mint.test",
		Mint:        stubMint{},
		Oracle:      stubOracle{},
		LockManager: lock,
		SeedStore:   store,
		Archiver:    archive,
		Notifier:    notifier,
	}, testMarkets())
	require.NoError(t, err)

	require.Equal(t, "seed:http://mint.test", lock.key)
	require.Equal(t, 10*time.Minute, lock.ttl)
	require.True(t, lock.released)

	require.Len(t, store.reports, 1)
	report := store.reports[0]
	require.Equal(t, 2, report.Succeeded())
	require.Equal(t, []string{report.RunID}, archive.runs)
	require.Len(t, notifier.reports, 1)
	require.Contains(t, out.String(), "Seeding complete.")
}

func TestSeedRefusesWhenLockHeld(t *testing.T) {
	a, out, _ := newTestApp()
	store := &memStore{}

	err := a.seed(context.Background(), &Dependencies{
		MintURL:     "http://mint.test",
		Mint:        stubMint{},
		Oracle:      stubOracle{},
		LockManager: &stubLock{held: true},
		SeedStore:   store,
	}, testMarkets())
	require.ErrorIs(t, err, domain.ErrLockHeld)
	require.Empty(t, out.String())
	require.Empty(t, store.reports)
}

func TestSeedAbortStillPublishes(t *testing.T) {
	a, out, errOut := newTestApp()
	store := &memStore{}

	err := a.seed(context.Background(), &Dependencies{
		MintURL:   "http://mint.test",
		Mint:      downMint{},
		Oracle:    stubOracle{},
		SeedStore: store,
	}, testMarkets())
	require.ErrorIs(t, err, domain.ErrTransport)
	require.NotContains(t, out.String(), "Seeding complete.")
	require.Contains(t, errOut.String(), "Seeding aborted:")

	require.Len(t, store.reports, 1)
	require.NotEmpty(t, store.reports[0].Aborted)
}

func TestSeedIgnoresPublishFailures(t *testing.T) {
	a, _, _ := newTestApp()

	err := a.seed(context.Background(), &Dependencies{
		MintURL:   "http://mint.test",
		Mint:      stubMint{},
		Oracle:    stubOracle{},
		SeedStore: &memStore{err: errors.New("db down")},
		Notifier:  &recordingNotifier{},
	}, testMarkets())
	require.NoError(t, err)
}

func TestHistory(t *testing.T) {
	a, out, _ := newTestApp()
	store := &memStore{reports: []domain.SeedReport{{
		RunID:     "run-1",
		MintURL:   "http://mint.test",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Outcomes: []domain.MarketOutcome{
			{EventID: "e1", State: domain.MarketPartitionRegistered, ConditionID: "c1", Keysets: domain.Keysets{"No": "b", "Yes": "a"}},
			{EventID: "e2", State: domain.MarketFailed, Failure: &domain.MarketFailure{Stage: domain.StageCondition, Status: 400, Body: "dup"}},
		},
	}}}

	require.NoError(t, a.history(context.Background(), store, 10))
	require.Contains(t, out.String(), "run-1")
	require.Contains(t, out.String(), "2026-01-02T03:04:05Z")

	out.Reset()
	require.NoError(t, a.showRun(context.Background(), store, "run-1"))
	require.Contains(t, out.String(), "{No=b, Yes=a}")
	require.Contains(t, out.String(), "condition: HTTP 400 dup")

	require.ErrorIs(t, a.showRun(context.Background(), store, "missing"), domain.ErrNotFound)
}

func TestHistoryDisabled(t *testing.T) {
	a, _, _ := newTestApp()
	require.ErrorIs(t, a.history(context.Background(), nil, 5), ErrHistoryDisabled)
	require.ErrorIs(t, a.showRun(context.Background(), nil, "x"), ErrHistoryDisabled)
}
