package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrStatusConflict = errors.New("booking status changed concurrently")

	ErrSlotLockHeld = errors.New("slot lock is held by another worker")

	ErrSlotLockTimeout = errors.New("timed out waiting for slot lock")
)
