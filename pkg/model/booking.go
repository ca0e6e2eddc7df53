package model

import (
	"time"
)

type Booking struct {
	ID              int64         `json:"id" bson:"_id"`
	RestaurantID    int64         `json:"restaurant_id" bson:"restaurant_id" validate:"required,gt=0"`
	BookingDatetime time.Time     `json:"booking_datetime" bson:"booking_datetime" validate:"required"`
	GuestsCount     int           `json:"guests_count" bson:"guests_count" validate:"required,gt=0"`
	Status          BookingStatus `json:"status" bson:"status" validate:"required,oneof=CREATED CHECKING_AVAILABILITY CONFIRMED REJECTED"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingCreate is the submission payload accepted by the API service.
// BookingDatetime is ISOTime so clients may omit the zone designator.
type BookingCreate struct {
	RestaurantID    int64   `json:"restaurant_id" validate:"required,gt=0"`
	BookingDatetime ISOTime `json:"booking_datetime" validate:"required"`
	GuestsCount     int     `json:"guests_count" validate:"required,gt=0"`
}
