package domain

import "time"

// Stage names the step of a market's seeding that failed.
type Stage string

const (
	StageAnnouncement Stage = "announcement"
	StageCondition    Stage = "condition"
	StagePartition    Stage = "partition"
)

// MarketState is the position of a market in the seeding state machine.
type MarketState string

const (
	MarketPending             MarketState = "pending"
	MarketAnnouncementBuilt   MarketState = "announcement_built"
	MarketConditionRegistered MarketState = "condition_registered"
	MarketPartitionRegistered MarketState = "partition_registered"
	MarketFailed              MarketState = "failed"
)

// MarketFailure records why a market ended in MarketFailed. Status and Body
// are zero for failures that never reached the mint.
type MarketFailure struct {
	Stage  Stage  `json:"stage"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// MarketOutcome is the per-market result of a seeding run. ConditionID is set
// once the condition is registered, even if the partition later fails.
type MarketOutcome struct {
	Market      MarketDefinition `json:"-"`
	EventID     string           `json:"event_id"`
	Description string           `json:"description"`
	State       MarketState      `json:"state"`
	ConditionID string           `json:"condition_id,omitempty"`
	Keysets     Keysets          `json:"keysets,omitempty"`
	Failure     *MarketFailure   `json:"failure,omitempty"`
}

// Succeeded reports whether the market reached PartitionRegistered.
func (o MarketOutcome) Succeeded() bool {
	return o.State == MarketPartitionRegistered
}

// SeedReport is the ordered record of one seeding run.
type SeedReport struct {
	RunID      string          `json:"run_id"`
	MintURL    string          `json:"mint_url"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcomes   []MarketOutcome `json:"outcomes"`
	// Aborted holds the run-fatal error, if any. Markets after the abort
	// point have no outcome.
	Aborted string `json:"aborted,omitempty"`
}

// Succeeded returns the number of fully seeded markets.
func (r SeedReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of markets that ended in MarketFailed.
func (r SeedReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == MarketFailed {
			n++
		}
	}
	return n
}
