package model

import "testing"

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{StatusCreated, StatusCheckingAvailability, true},
		{StatusCheckingAvailability, StatusConfirmed, true},
		{StatusCheckingAvailability, StatusRejected, true},
		{StatusCreated, StatusConfirmed, false},
		{StatusCreated, StatusRejected, false},
		{StatusConfirmed, StatusRejected, false},
		{StatusConfirmed, StatusCheckingAvailability, false},
		{StatusRejected, StatusConfirmed, false},
		{StatusRejected, StatusCreated, false},
		{StatusCheckingAvailability, StatusCreated, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	if StatusCreated.Terminal() {
		t.Error("CREATED must not be terminal")
	}
	if StatusCheckingAvailability.Terminal() {
		t.Error("CHECKING_AVAILABILITY must not be terminal")
	}
	if !StatusConfirmed.Terminal() {
		t.Error("CONFIRMED must be terminal")
	}
	if !StatusRejected.Terminal() {
		t.Error("REJECTED must be terminal")
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{StatusCreated, StatusCheckingAvailability, StatusConfirmed, StatusRejected} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	if BookingStatus("PENDING").Valid() {
		t.Error("unknown status must not be valid")
	}
	if BookingStatus("").Valid() {
		t.Error("empty status must not be valid")
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(StatusCreated, StatusCheckingAvailability); err != nil {
		t.Errorf("unexpected error for legal transition: %v", err)
	}

	if err := ValidateTransition(StatusConfirmed, StatusRejected); err == nil {
		t.Error("expected error for transition out of a terminal status")
	}

	if err := ValidateTransition(BookingStatus("bogus"), StatusConfirmed); err == nil {
		t.Error("expected error for unknown source status")
	}

	if err := ValidateTransition(StatusCreated, BookingStatus("bogus")); err == nil {
		t.Error("expected error for unknown target status")
	}
}
