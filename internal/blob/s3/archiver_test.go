package s3blob

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

type memWriter struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
		m.types = map[string]string{}
	}
	m.objects[path] = b
	m.types[path] = contentType
	return nil
}

func TestReportKey(t *testing.T) {
	started := time.Date(2026, 3, 7, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	key := ReportKey("seed-runs", domain.SeedReport{RunID: "abc", StartedAt: started})
	require.Equal(t, "seed-runs/2026/03/08/abc.json", key)

	require.Equal(t, "2026/03/08/abc.json", ReportKey("", domain.SeedReport{RunID: "abc", StartedAt: started}))
}

func TestArchiveUploadsJSON(t *testing.T) {
	w := &memWriter{}
	report := domain.SeedReport{
		RunID:     "run-1",
		MintURL:   "http://mintd:8085",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Outcomes: []domain.MarketOutcome{{
			EventID:     "btc-100k-2026",
			State:       domain.MarketPartitionRegistered,
			ConditionID: "c1",
			Keysets:     domain.Keysets{"Yes": "a", "No": "b"},
		}},
	}

	key, err := NewReportArchiver(w, "seed-runs").Archive(context.Background(), report)
	require.NoError(t, err)
	require.Equal(t, "seed-runs/2026/01/02/run-1.json", key)
	require.Equal(t, "application/json", w.types[key])

	var got domain.SeedReport
	require.NoError(t, json.Unmarshal(w.objects[key], &got))
	require.Equal(t, "run-1", got.RunID)
	require.Equal(t, domain.Keysets{"Yes": "a", "No": "b"}, got.Outcomes[0].Keysets)
}

func TestArchivePropagatesWriterError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewReportArchiver(&memWriter{err: boom}, "p").Archive(context.Background(), domain.SeedReport{RunID: "r"})
	require.ErrorIs(t, err, boom)
}

func TestNormaliseEndpoint(t *testing.T) {
	require.Equal(t, "http://minio:9000", normaliseEndpoint("minio:9000", false))
	require.Equal(t, "https://s3.example.com", normaliseEndpoint("s3.example.com", true))
	require.Equal(t, "http://minio:9000", normaliseEndpoint("http://minio:9000", true))
}
