package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

// Event types carried on the booking lifecycle topic. Unknown types are
// expected as the schema evolves and must be treated as no-ops by consumers.
const (
	TypeBookingCreated = "booking.created"
)

// Envelope is the wire format shared by all booking lifecycle events.
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// BookingCreated is the payload of a booking.created event.
type BookingCreated struct {
	BookingID       int64   `json:"booking_id"`
	RestaurantID    int64   `json:"restaurant_id"`
	BookingDatetime ISOTime `json:"booking_datetime"`
	GuestsCount     int     `json:"guests_count"`
}

// ISOTime is the lenient ISO-8601 timestamp shared with the submission
// payload. See pkg/model.
type ISOTime = model.ISOTime

// ParseEnvelope decodes the outer event envelope.
func ParseEnvelope(value []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("malformed event envelope: %w", err)
	}
	if env.EventType == "" {
		return nil, fmt.Errorf("event envelope is missing event_type")
	}
	return &env, nil
}

// DecodeBookingCreated decodes and validates a booking.created payload.
func (e *Envelope) DecodeBookingCreated() (*BookingCreated, error) {
	if e.EventType != TypeBookingCreated {
		return nil, fmt.Errorf("unexpected event type %q", e.EventType)
	}
	var data BookingCreated
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", TypeBookingCreated, err)
	}
	if data.BookingID <= 0 {
		return nil, fmt.Errorf("%s payload is missing booking_id", TypeBookingCreated)
	}
	return &data, nil
}

// NewBookingCreated builds the envelope published when a booking is submitted.
func NewBookingCreated(bookingID, restaurantID int64, bookingDatetime time.Time, guestsCount int) ([]byte, error) {
	data, err := json.Marshal(BookingCreated{
		BookingID:       bookingID,
		RestaurantID:    restaurantID,
		BookingDatetime: ISOTime(bookingDatetime),
		GuestsCount:     guestsCount,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		EventType: TypeBookingCreated,
		Data:      data,
	})
}
