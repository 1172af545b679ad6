package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// Summarize renders report as an event type, title and message body.
// A run is reported as failed when it aborted or any market failed.
func Summarize(report domain.SeedReport) (event, title, message string) {
	event = EventSeedComplete
	title = "Seeding complete"
	if report.Aborted != "" || report.Failed() > 0 {
		event = EventSeedFailed
		title = "Seeding finished with failures"
	}
	if report.Aborted != "" {
		title = "Seeding aborted"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "mint: %s\nrun: %s\n", report.MintURL, report.RunID)
	fmt.Fprintf(&b, "%d seeded, %d failed\n", report.Succeeded(), report.Failed())
	for _, o := range report.Outcomes {
		switch {
		case o.Succeeded():
			fmt.Fprintf(&b, "ok %s %s\n", o.EventID, o.ConditionID)
		case o.Failure != nil && o.Failure.Status != 0:
			fmt.Fprintf(&b, "failed %s at %s (HTTP %d)\n", o.EventID, o.Failure.Stage, o.Failure.Status)
		case o.Failure != nil:
			fmt.Fprintf(&b, "failed %s at %s: %s\n", o.EventID, o.Failure.Stage, o.Failure.Reason)
		default:
			fmt.Fprintf(&b, "%s %s\n", o.State, o.EventID)
		}
	}
	if report.Aborted != "" {
		fmt.Fprintf(&b, "aborted: %s\n", report.Aborted)
	}
	return event, title, strings.TrimRight(b.String(), "\n")
}

// NotifyReport summarizes report and sends it.
func (n *Notifier) NotifyReport(ctx context.Context, report domain.SeedReport) error {
	event, title, message := Summarize(report)
	return n.Notify(ctx, event, title, message)
}
