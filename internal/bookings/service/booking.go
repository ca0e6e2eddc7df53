package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	bookingserrors "github.com/iBubenok/restaurant-booking-system/internal/bookings/errors"
	"github.com/iBubenok/restaurant-booking-system/internal/bookings/repository"
	"github.com/iBubenok/restaurant-booking-system/internal/bookings/validator"
	restauranterrors "github.com/iBubenok/restaurant-booking-system/internal/restaurants/errors"
	restaurantrepo "github.com/iBubenok/restaurant-booking-system/internal/restaurants/repository"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/events"
	"github.com/iBubenok/restaurant-booking-system/pkg/kafka"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Create(ctx context.Context, payload *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo           repository.BookingRepository
	restaurantRepo restaurantrepo.RestaurantRepository
	publisher      EventPublisher
	validator      *validator.BookingValidator
	cfg            *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	restaurantRepo restaurantrepo.RestaurantRepository,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:           repo,
		restaurantRepo: restaurantRepo,
		publisher:      publisher,
		validator:      validator,
		cfg:            cfg,
	}
}

// Create persists the booking in CREATED status and announces it on the
// event topic. Publishing is best-effort: the booking stays in CREATED
// when the broker is down and can be re-announced later, so a publish
// failure does not fail the submission.
func (s *bookingService) Create(ctx context.Context, payload *model.BookingCreate) (*model.Booking, error) {
	if err := s.validator.ValidateCreate(payload); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.restaurantRepo.FindByID(ctx, payload.RestaurantID); err != nil {
		if errors.Is(err, restauranterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", payload.RestaurantID)
		}
		return nil, apperrors.Internal("Failed to check restaurant existence", err)
	}

	booking := &model.Booking{
		RestaurantID:    payload.RestaurantID,
		BookingDatetime: payload.BookingDatetime.Time().UTC(),
		GuestsCount:     payload.GuestsCount,
		Status:          model.StatusCreated,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publishCreated(ctx, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"restaurant_id", booking.RestaurantID,
		"booking_datetime", booking.BookingDatetime,
	)
	return booking, nil
}

func (s *bookingService) publishCreated(ctx context.Context, booking *model.Booking) {
	value, err := events.NewBookingCreated(booking.ID, booking.RestaurantID, booking.BookingDatetime, booking.GuestsCount)
	if err != nil {
		s.cfg.Log.Error("Failed to encode booking.created event", "id", booking.ID, "error", err)
		return
	}

	msg := kafka.NewMessage().
		WithKey(strconv.FormatInt(booking.ID, 10)).
		WithRawValue(value).
		WithEventType(events.TypeBookingCreated).
		WithSource("booking-api").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking.created event; booking remains CREATED",
			"id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	if id < 1 {
		return nil, apperrors.InvalidInput("Booking ID must be a positive integer")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}
