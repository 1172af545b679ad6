package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ConditionType distinguishes discrete-outcome conditions from numeric ones.
type ConditionType string

const (
	ConditionTypeEnum    ConditionType = "enum"
	ConditionTypeNumeric ConditionType = "numeric"
)

// CollateralSat is the collateral unit every seeded partition splits.
const CollateralSat = "sat"

// RootCollectionID is the all-zero parent collection: the partition splits
// the root collateral pool rather than an already split sub-collection.
var RootCollectionID = strings.Repeat("0", 64)

// RegisterConditionRequest is the payload of POST /v1/conditions.
type RegisterConditionRequest struct {
	Threshold     int           `json:"threshold"`
	Description   string        `json:"description"`
	Announcements []string      `json:"announcements"`
	ConditionType ConditionType `json:"condition_type"`
}

// RegisterPartitionRequest is the payload of
// POST /v1/conditions/{condition_id}/partitions.
type RegisterPartitionRequest struct {
	Collateral         string   `json:"collateral"`
	Partition          []string `json:"partition"`
	ParentCollectionID string   `json:"parent_collection_id"`
}

// Keysets maps an outcome label to the keyset id the mint issued for it.
type Keysets map[string]string

// Format renders the mapping following the given label order; labels the
// mint returned but the caller did not ask about are appended at the end.
func (k Keysets) Format(order []string) string {
	var b strings.Builder
	written := make(map[string]bool, len(k))
	write := func(label, id string) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", label, id)
		written[label] = true
	}
	for _, label := range order {
		if id, ok := k[label]; ok {
			write(label, id)
		}
	}
	rest := make([]string, 0, len(k)-len(written))
	for label := range k {
		if !written[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		write(label, k[label])
	}
	return "{" + b.String() + "}"
}
