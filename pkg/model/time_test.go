package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookingCreate_DecodesZonelessDatetime(t *testing.T) {
	body := []byte(`{"restaurant_id":1,"booking_datetime":"2024-12-31T19:00:00","guests_count":4}`)

	var payload BookingCreate
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode submission body: %v", err)
	}

	want := time.Date(2024, 12, 31, 19, 0, 0, 0, time.UTC)
	if !payload.BookingDatetime.Time().Equal(want) {
		t.Errorf("expected %v, got %v", want, payload.BookingDatetime.Time())
	}
	if payload.RestaurantID != 1 || payload.GuestsCount != 4 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestBookingCreate_DecodesZonedDatetime(t *testing.T) {
	body := []byte(`{"restaurant_id":1,"booking_datetime":"2024-12-31T19:00:00+03:00","guests_count":4}`)

	var payload BookingCreate
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode submission body: %v", err)
	}

	want := time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC)
	if !payload.BookingDatetime.Time().Equal(want) {
		t.Errorf("expected %v, got %v", want, payload.BookingDatetime.Time())
	}
}

func TestBookingCreate_RejectsGarbageDatetime(t *testing.T) {
	body := []byte(`{"restaurant_id":1,"booking_datetime":"tomorrow evening","guests_count":4}`)

	var payload BookingCreate
	if err := json.Unmarshal(body, &payload); err == nil {
		t.Fatal("expected decode error for a non-ISO datetime")
	}
}
