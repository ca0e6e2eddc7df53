package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/iBubenok/restaurant-booking-system/pkg/logger"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validPayload() *model.BookingCreate {
	return &model.BookingCreate{
		RestaurantID:    1,
		BookingDatetime: model.ISOTime(time.Now().Add(24 * time.Hour)),
		GuestsCount:     4,
	}
}

func TestValidateCreate_Valid(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCreate(validPayload()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateCreate_MissingRestaurant(t *testing.T) {
	v := newTestValidator()

	payload := validPayload()
	payload.RestaurantID = 0

	err := v.ValidateCreate(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "RestaurantID") {
		t.Errorf("expected RestaurantID in error, got: %v", err)
	}
}

func TestValidateCreate_GuestsCount(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		guests  int
		wantErr bool
	}{
		{0, true},
		{-3, true},
		{1, false},
		{100, false},
		{101, true},
	}

	for _, tt := range tests {
		payload := validPayload()
		payload.GuestsCount = tt.guests

		err := v.ValidateCreate(payload)
		if tt.wantErr && err == nil {
			t.Errorf("guests_count %d: expected error", tt.guests)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("guests_count %d: unexpected error: %v", tt.guests, err)
		}
	}
}

func TestValidateCreate_PastDatetime(t *testing.T) {
	v := newTestValidator()

	payload := validPayload()
	payload.BookingDatetime = model.ISOTime(time.Now().Add(-time.Hour))

	err := v.ValidateCreate(payload)
	if err == nil {
		t.Fatal("expected validation error for a past booking_datetime")
	}
	if !strings.Contains(err.Error(), "BookingDatetime") {
		t.Errorf("expected BookingDatetime in error, got: %v", err)
	}
}

func TestValidateCreate_ZeroDatetime(t *testing.T) {
	v := newTestValidator()

	payload := validPayload()
	payload.BookingDatetime = model.ISOTime{}

	if err := v.ValidateCreate(payload); err == nil {
		t.Fatal("expected validation error for a zero booking_datetime")
	}
}
