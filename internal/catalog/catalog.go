// Package catalog declares the example markets seeded onto a fresh mint.
package catalog

import (
	"time"

	"github.com/alanyoungcy/seedconditions/internal/domain"
)

// Markets returns the seeding catalog in seeding order. Each call returns a
// fresh copy so callers cannot mutate the declared data.
func Markets() []domain.MarketDefinition {
	return []domain.MarketDefinition{
		{
			Description: "Will Bitcoin reach $100K before end of 2026?",
			Outcomes:    []string{"Yes", "No"},
			EventID:     "btc-100k-2026",
			Maturity:    time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Description: "2026 NBA Championship Winner",
			Outcomes:    []string{"Lakers", "Celtics", "Warriors", "Bucks", "Other"},
			EventID:     "nba-champ-2026",
			Maturity:    time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Description: "Fed Q1 2026 Rate Decision",
			Outcomes:    []string{"Cut 50+ bps", "Cut 25 bps", "Hold", "Hike"},
			EventID:     "fed-rate-q1-2026",
			Maturity:    time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
