package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	bookingserrors "github.com/iBubenok/restaurant-booking-system/internal/bookings/errors"
	"github.com/iBubenok/restaurant-booking-system/internal/bookings/validator"
	restauranterrors "github.com/iBubenok/restaurant-booking-system/internal/restaurants/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	mongotx "github.com/iBubenok/restaurant-booking-system/pkg/db/mongo"
	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/events"
	"github.com/iBubenok/restaurant-booking-system/pkg/kafka"
	"github.com/iBubenok/restaurant-booking-system/pkg/logger"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

type mockBookingRepository struct {
	createFunc   func(ctx context.Context, booking *model.Booking) error
	findByIDFunc func(ctx context.Context, id int64) (*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = 1
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockBookingRepository) ExistsConfirmedSlot(ctx context.Context, restaurantID int64, slot time.Time) (bool, error) {
	return false, nil
}

func (m *mockBookingRepository) CommitStatus(ctx context.Context, id int64, from, to model.BookingStatus) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockRestaurantRepository struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.Restaurant, error)
}

func (m *mockRestaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	return nil
}

func (m *mockRestaurantRepository) FindByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Restaurant{ID: id, Name: "Test"}, nil
}

func (m *mockRestaurantRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, error) {
	return nil, nil
}

func (m *mockRestaurantRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

type mockPublisher struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	published   []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestService(repo *mockBookingRepository, restaurants *mockRestaurantRepository, publisher *mockPublisher) BookingService {
	cfg := testConfig()
	return NewBookingService(repo, restaurants, publisher, validator.NewBookingValidator(cfg.Log), cfg)
}

func validCreate() *model.BookingCreate {
	return &model.BookingCreate{
		RestaurantID:    2,
		BookingDatetime: model.ISOTime(time.Now().Add(48 * time.Hour).UTC()),
		GuestsCount:     3,
	}
}

func TestCreate_PersistsAndPublishes(t *testing.T) {
	publisher := &mockPublisher{}
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, publisher)

	booking, err := service.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusCreated {
		t.Errorf("expected status CREATED, got %s", booking.Status)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}

	env, err := events.ParseEnvelope(publisher.published[0].Value)
	if err != nil {
		t.Fatalf("published event is not a valid envelope: %v", err)
	}
	payload, err := env.DecodeBookingCreated()
	if err != nil {
		t.Fatalf("published event payload is invalid: %v", err)
	}
	if payload.BookingID != booking.ID {
		t.Errorf("expected booking_id %d in event, got %d", booking.ID, payload.BookingID)
	}
}

func TestCreate_AcceptsZonelessDatetimeBody(t *testing.T) {
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, &mockPublisher{})

	future := time.Now().AddDate(0, 6, 0).UTC()
	body := fmt.Sprintf(`{"restaurant_id":2,"booking_datetime":%q,"guests_count":3}`,
		future.Format("2006-01-02T15:04:05"))

	var payload model.BookingCreate
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("failed to decode submission body: %v", err)
	}

	booking, err := service.Create(context.Background(), &payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !booking.BookingDatetime.Equal(future.Truncate(time.Second)) {
		t.Errorf("expected booking_datetime %v, got %v", future.Truncate(time.Second), booking.BookingDatetime)
	}
}

func TestCreate_ToleratesPublishFailure(t *testing.T) {
	publisher := &mockPublisher{
		publishFunc: func(ctx context.Context, msg kafka.Message) error {
			return errors.New("broker unreachable")
		},
	}
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, publisher)

	booking, err := service.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("a broker outage must not fail the submission, got %v", err)
	}
	if booking.Status != model.StatusCreated {
		t.Errorf("expected status CREATED, got %s", booking.Status)
	}
}

func TestCreate_UnknownRestaurant(t *testing.T) {
	restaurants := &mockRestaurantRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Restaurant, error) {
			return nil, restauranterrors.ErrNotFound
		},
	}
	publisher := &mockPublisher{}
	service := newTestService(&mockBookingRepository{}, restaurants, publisher)

	_, err := service.Create(context.Background(), validCreate())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Errorf("no event must be published for a rejected submission, got %d", len(publisher.published))
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, &mockPublisher{})

	payload := validCreate()
	payload.GuestsCount = 0

	_, err := service.Create(context.Background(), payload)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, &mockPublisher{})

	_, err := service.GetByID(context.Background(), 42)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %v", err)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	service := newTestService(&mockBookingRepository{}, &mockRestaurantRepository{}, &mockPublisher{})

	_, err := service.GetByID(context.Background(), 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT error, got %v", err)
	}
}
