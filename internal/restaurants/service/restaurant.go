package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	restauranterrors "github.com/iBubenok/restaurant-booking-system/internal/restaurants/errors"
	"github.com/iBubenok/restaurant-booking-system/internal/restaurants/repository"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

type RestaurantService interface {
	Create(ctx context.Context, restaurant *model.Restaurant) error
	GetByID(ctx context.Context, id int64) (*model.Restaurant, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, int64, error)
}

type restaurantService struct {
	repo     repository.RestaurantRepository
	cfg      *config.Config
	validate *validator.Validate
}

func NewRestaurantService(repo repository.RestaurantRepository, cfg *config.Config) RestaurantService {
	return &restaurantService{
		repo:     repo,
		cfg:      cfg,
		validate: validator.New(),
	}
}

func (s *restaurantService) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if err := s.validate.Struct(restaurant); err != nil {
		details := make(map[string]any)
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return apperrors.Validation("Restaurant validation failed", details)
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		s.cfg.Log.Error("Failed to create restaurant", "name", restaurant.Name, "error", err)
		return apperrors.Internal("Failed to create restaurant", err)
	}

	return nil
}

func (s *restaurantService) GetByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	if id < 1 {
		return nil, apperrors.InvalidInput("Restaurant ID must be a positive integer")
	}

	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, restauranterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", id)
		}
		return nil, apperrors.Internal("Failed to retrieve restaurant", err)
	}

	return restaurant, nil
}

func (s *restaurantService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, int64, error) {
	var count int64
	var restaurants []*model.Restaurant
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count restaurants", "error", errCount)
			errCount = apperrors.Internal("Failed to count restaurants", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		restaurants, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list restaurants", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve restaurants", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return restaurants, count, nil
}
