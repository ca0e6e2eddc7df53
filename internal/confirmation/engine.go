package confirmation

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/iBubenok/restaurant-booking-system/internal/bookings/errors"
	"github.com/iBubenok/restaurant-booking-system/internal/bookings/repository"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

// Engine drives a booking from CREATED to its terminal status. Processing
// is idempotent: redelivered events for bookings that already reached
// CONFIRMED or REJECTED are no-ops, and a booking found mid-flight in
// CHECKING_AVAILABILITY is resumed rather than restarted.
type Engine struct {
	repo    repository.BookingRepository
	locks   repository.SlotLockRepository
	checker AvailabilityChecker
	cfg     *config.Config
}

func NewEngine(
	repo repository.BookingRepository,
	locks repository.SlotLockRepository,
	checker AvailabilityChecker,
	cfg *config.Config,
) *Engine {
	return &Engine{
		repo:    repo,
		locks:   locks,
		checker: checker,
		cfg:     cfg,
	}
}

// Process confirms or rejects the booking and returns the status it ended
// up in. Errors wrapping ErrRetryable mean nothing durable happened that
// forbids redelivery; ErrBookingNotFound means the event references a
// booking that does not exist and retrying is pointless.
func (e *Engine) Process(ctx context.Context, bookingID int64) (model.BookingStatus, error) {
	booking, err := e.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return "", fmt.Errorf("%w: booking %d", ErrBookingNotFound, bookingID)
		}
		return "", fmt.Errorf("%w: loading booking %d: %v", ErrRetryable, bookingID, err)
	}

	if booking.Status.Terminal() {
		e.cfg.Log.Info("Booking already decided, skipping",
			"id", booking.ID,
			"status", booking.Status,
		)
		return booking.Status, nil
	}

	if booking.Status == model.StatusCreated {
		if err := e.repo.CommitStatus(ctx, bookingID, model.StatusCreated, model.StatusCheckingAvailability); err != nil {
			if errors.Is(err, bookingserrors.ErrStatusConflict) {
				return e.resolveConflict(ctx, bookingID)
			}
			return "", fmt.Errorf("%w: marking booking %d in progress: %v", ErrRetryable, bookingID, err)
		}
	}

	final, err := e.decide(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusConflict) {
			return e.resolveConflict(ctx, bookingID)
		}
		if errors.Is(err, bookingserrors.ErrSlotLockTimeout) {
			return "", fmt.Errorf("%w: %v", ErrRetryable, err)
		}
		return "", fmt.Errorf("%w: deciding booking %d: %v", ErrRetryable, bookingID, err)
	}

	e.cfg.Log.Info("Booking decided",
		"id", booking.ID,
		"restaurant_id", booking.RestaurantID,
		"booking_datetime", booking.BookingDatetime,
		"status", final,
	)
	return final, nil
}

// decide holds the slot lock while checking availability and committing the
// terminal status in one transaction, so two workers deciding the same slot
// cannot both observe it free.
func (e *Engine) decide(ctx context.Context, booking *model.Booking) (model.BookingStatus, error) {
	var final model.BookingStatus

	err := e.locks.WithSlotLock(ctx, booking.RestaurantID, booking.BookingDatetime, func(ctx context.Context) error {
		return e.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			free, err := e.checker.SlotFree(sessCtx, booking.RestaurantID, booking.BookingDatetime)
			if err != nil {
				return err
			}

			target := model.StatusConfirmed
			if !free {
				target = model.StatusRejected
			}

			if err := e.repo.CommitStatus(sessCtx, booking.ID, model.StatusCheckingAvailability, target); err != nil {
				return err
			}

			final = target
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	return final, nil
}

// resolveConflict re-reads a booking whose status moved under us. A terminal
// status means another worker finished the job and this delivery is done;
// anything else is a transient interleaving worth a redelivery.
func (e *Engine) resolveConflict(ctx context.Context, bookingID int64) (model.BookingStatus, error) {
	booking, err := e.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return "", fmt.Errorf("%w: booking %d", ErrBookingNotFound, bookingID)
		}
		return "", fmt.Errorf("%w: re-reading booking %d: %v", ErrRetryable, bookingID, err)
	}

	if booking.Status.Terminal() {
		e.cfg.Log.Info("Booking decided by a concurrent worker",
			"id", booking.ID,
			"status", booking.Status,
		)
		return booking.Status, nil
	}

	return "", fmt.Errorf("%w: booking %d status changed concurrently to %s", ErrRetryable, bookingID, booking.Status)
}
