package model

import "fmt"

// BookingStatus is the lifecycle state of a booking. The four values below
// are the exact names persisted and transmitted externally.
type BookingStatus string

const (
	StatusCreated              BookingStatus = "CREATED"
	StatusCheckingAvailability BookingStatus = "CHECKING_AVAILABILITY"
	StatusConfirmed            BookingStatus = "CONFIRMED"
	StatusRejected             BookingStatus = "REJECTED"
)

// transitions is the complete set of legal status changes. Anything not
// listed here is rejected at the commit boundary.
var transitions = map[BookingStatus][]BookingStatus{
	StatusCreated:              {StatusCheckingAvailability},
	StatusCheckingAvailability: {StatusConfirmed, StatusRejected},
	StatusConfirmed:            {},
	StatusRejected:             {},
}

// Valid reports whether s is one of the four known statuses.
func (s BookingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// CanTransition reports whether s -> to is a legal status change.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error for an illegal change.
func ValidateTransition(from, to BookingStatus) error {
	if !from.Valid() {
		return fmt.Errorf("unknown booking status %q", from)
	}
	if !to.Valid() {
		return fmt.Errorf("unknown booking status %q", to)
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("illegal booking status transition %s -> %s", from, to)
	}
	return nil
}
