package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotTaken is the expected contention outcome of a claim: another
	// non-cancelled appointment already occupies the start time.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrUnauthorized means no valid booker identity was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStoreUnavailable wraps transient store failures. Callers must be
	// able to tell "no availability" from "lookup failed", so the resolver
	// never coerces this into an empty result.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPaymentGateway wraps checkout/lookup failures at the gateway.
	ErrPaymentGateway = errors.New("payment gateway error")

	// ErrNotCancellable means the appointment left the pending state.
	// Confirmed and cancelled are both terminal; only pending rows cancel.
	ErrNotCancellable = errors.New("appointment is not cancellable")

	ErrNotFound = errors.New("not found")
)

// MalformedTimeError reports a rule time string that does not parse as
// H:MM or H:MM:SS. Bad configuration data, not a runtime condition.
type MalformedTimeError struct {
	Value string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time of day %q", e.Value)
}

func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
