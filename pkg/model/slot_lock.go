package model

import (
	"fmt"
	"time"
)

// SlotLock is an advisory lock document serializing decision commits for a
// single (restaurant, slot) pair. The unique _id insert is the acquisition:
// a duplicate key error means a competing worker holds the slot.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SlotLockID builds the lock key from the slot coordinates.
func SlotLockID(restaurantID int64, slot time.Time) string {
	return fmt.Sprintf("slot_%d_%d", restaurantID, slot.UTC().Unix())
}
