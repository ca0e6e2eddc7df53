package service

import (
	"context"
	"errors"
	"testing"

	restauranterrors "github.com/iBubenok/restaurant-booking-system/internal/restaurants/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/logger"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

type mockRestaurantRepository struct {
	createFunc   func(ctx context.Context, restaurant *model.Restaurant) error
	findByIDFunc func(ctx context.Context, id int64) (*model.Restaurant, error)
}

func (m *mockRestaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, restaurant)
	}
	restaurant.ID = 1
	return nil
}

func (m *mockRestaurantRepository) FindByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, restauranterrors.ErrNotFound
}

func (m *mockRestaurantRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, error) {
	return nil, nil
}

func (m *mockRestaurantRepository) Count(ctx context.Context) (int64, error) { return 0, nil }

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func TestCreate_AssignsID(t *testing.T) {
	repo := &mockRestaurantRepository{}
	svc := NewRestaurantService(repo, testConfig())

	restaurant := &model.Restaurant{Name: "La Piazza", Address: "12 Market St"}
	if err := svc.Create(context.Background(), restaurant); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if restaurant.ID != 1 {
		t.Errorf("expected assigned ID 1, got %d", restaurant.ID)
	}
}

func TestCreate_RejectsMissingFields(t *testing.T) {
	called := false
	repo := &mockRestaurantRepository{
		createFunc: func(ctx context.Context, restaurant *model.Restaurant) error {
			called = true
			return nil
		},
	}
	svc := NewRestaurantService(repo, testConfig())

	err := svc.Create(context.Background(), &model.Restaurant{Name: "La Piazza"})
	if err == nil {
		t.Fatal("expected validation error for missing address")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
	if called {
		t.Error("repository should not be reached on validation failure")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewRestaurantService(&mockRestaurantRepository{}, testConfig())

	_, err := svc.GetByID(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error for unknown restaurant")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	repo := &mockRestaurantRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Restaurant, error) {
			t.Fatal("repository should not be reached for invalid ID")
			return nil, nil
		},
	}
	svc := NewRestaurantService(repo, testConfig())

	_, err := svc.GetByID(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error for non-positive ID")
	}
}

func TestGetByID_RepositoryError(t *testing.T) {
	repo := &mockRestaurantRepository{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Restaurant, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := NewRestaurantService(repo, testConfig())

	_, err := svc.GetByID(context.Background(), 7)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal {
		t.Errorf("expected code %s, got %s", apperrors.CodeInternal, appErr.Code)
	}
}
