package domain

import "context"

// Mint is the subset of the conditional-token mint API the seeder drives.
//
// A non-success status is reported as *RegistrationError. Failures to reach
// the mint wrap ErrTransport and success responses that cannot be decoded wrap
// ErrDecode.
type Mint interface {
	RegisterCondition(ctx context.Context, req RegisterConditionRequest) (conditionID string, err error)
	RegisterPartition(ctx context.Context, conditionID string, req RegisterPartitionRequest) (Keysets, error)
}
