package domain

import (
	"fmt"
	"strings"
	"time"
)

// MarketDefinition is one entry of the seeding catalog: a question, its
// mutually exclusive outcomes and the oracle event that will resolve it.
type MarketDefinition struct {
	Description string
	Outcomes    []string // declared order is preserved all the way to the mint
	EventID     string
	Maturity    time.Time
}

// Validate checks a single definition for the properties the mint relies on.
func (m MarketDefinition) Validate() error {
	if strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrInvalidMarket)
	}
	if strings.TrimSpace(m.EventID) == "" {
		return fmt.Errorf("%w: event_id must not be empty (%q)", ErrInvalidMarket, m.Description)
	}
	if len(m.Outcomes) == 0 {
		return fmt.Errorf("%w: %s has no outcomes", ErrInvalidMarket, m.EventID)
	}
	seen := make(map[string]bool, len(m.Outcomes))
	for _, o := range m.Outcomes {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: %s has an empty outcome label", ErrInvalidMarket, m.EventID)
		}
		if seen[o] {
			return fmt.Errorf("%w: %s repeats outcome %q", ErrInvalidMarket, m.EventID, o)
		}
		seen[o] = true
	}
	return nil
}

// ValidateCatalog validates every definition and checks that event ids are
// unique across the catalog.
func ValidateCatalog(markets []MarketDefinition) error {
	events := make(map[string]bool, len(markets))
	for _, m := range markets {
		if err := m.Validate(); err != nil {
			return err
		}
		if events[m.EventID] {
			return fmt.Errorf("%w: duplicate event_id %q", ErrInvalidMarket, m.EventID)
		}
		events[m.EventID] = true
	}
	return nil
}
