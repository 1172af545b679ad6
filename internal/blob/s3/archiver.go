package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// ReportArchiver writes each seed report as one JSON object keyed by the
// run's start date and id.
type ReportArchiver struct {
	writer domain.BlobWriter
	prefix string
}

// NewReportArchiver returns an archiver writing under prefix.
func NewReportArchiver(writer domain.BlobWriter, prefix string) *ReportArchiver {
	return &ReportArchiver{writer: writer, prefix: prefix}
}

// ReportKey returns <prefix>/YYYY/MM/DD/<run-id>.json using the UTC start
// date of the run.
func ReportKey(prefix string, report domain.SeedReport) string {
	day := report.StartedAt.UTC().Format("2006/01/02")
	return path.Join(prefix, day, report.RunID+".json")
}

// Archive uploads report and returns the object key.
func (a *ReportArchiver) Archive(ctx context.Context, report domain.SeedReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report %s: %w", report.RunID, err)
	}
	key := ReportKey(a.prefix, report)
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
