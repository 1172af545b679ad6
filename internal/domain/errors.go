package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransport     = errors.New("transport failure")
	ErrDecode        = errors.New("undecodable response")
	ErrInvalidMarket = errors.New("invalid market definition")
	ErrLockHeld      = errors.New("lock already held")
	ErrNotFound      = errors.New("not found")
)

// RegistrationError reports a mint that answered a registration call with a
// non-success status. It is scoped to a single market.
type RegistrationError struct {
	Stage  Stage
	Status int
	Body   string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s: HTTP %d: %s", e.Stage, e.Status, e.Body)
}
