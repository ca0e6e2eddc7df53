package confirmation

import (
	"context"
	"time"

	"github.com/iBubenok/restaurant-booking-system/internal/bookings/repository"
)

// AvailabilityChecker answers whether a (restaurant, datetime) slot can
// still be confirmed. Callers inside a transaction must pass the session
// context so the read joins the atomic unit.
type AvailabilityChecker interface {
	SlotFree(ctx context.Context, restaurantID int64, slot time.Time) (bool, error)
}

type availabilityChecker struct {
	repo repository.BookingRepository
}

func NewAvailabilityChecker(repo repository.BookingRepository) AvailabilityChecker {
	return &availabilityChecker{repo: repo}
}

// SlotFree reports true when no booking holds the slot in CONFIRMED status.
func (c *availabilityChecker) SlotFree(ctx context.Context, restaurantID int64, slot time.Time) (bool, error) {
	taken, err := c.repo.ExistsConfirmedSlot(ctx, restaurantID, slot)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
