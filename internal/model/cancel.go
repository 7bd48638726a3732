package model

import "time"

// CancelWindow is how long after creation an order may still be cancelled
// from the client. The backend re-checks at request time; this is advisory.
const CancelWindow = 120 * time.Second

// CancelRemaining returns how much of the cancellation window is left for
// the order at the given instant. Derived from wall-clock delta every call,
// never from decremented state, so it self-corrects after suspension.
func CancelRemaining(o *Order, now time.Time) time.Duration {
	remaining := CancelWindow - now.Sub(o.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CancelEligible reports whether client-side cancellation should be offered:
// the window is still open and the order has not passed preparing.
func CancelEligible(o *Order, now time.Time) bool {
	if o.Status != StatusPending && o.Status != StatusPreparing {
		return false
	}
	return CancelRemaining(o, now) > 0
}
