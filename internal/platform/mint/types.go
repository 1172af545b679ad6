package mint

import "github.com/alanyoungcy/seedconditions/internal/domain"

type registerConditionResponse struct {
	ConditionID string `json:"condition_id"`
}

type registerPartitionResponse struct {
	Keysets domain.Keysets `json:"keysets"`
}
