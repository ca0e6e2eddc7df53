package main

import (
	"context"
	"time"

	restaurantrepo "github.com/iBubenok/restaurant-booking-system/internal/restaurants/repository"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

const JobName = "seed-data"

var restaurants = []model.Restaurant{
	{Name: "La Piazza", Address: "12 Garibaldi Street", Description: "Family-run Italian trattoria with a wood-fired oven"},
	{Name: "Sakura House", Address: "3 Cherry Blossom Lane", Description: "Traditional Japanese dining and an omakase counter"},
	{Name: "The Golden Fork", Address: "88 Market Square", Description: "Modern European bistro with a seasonal menu"},
	{Name: "Spice Route", Address: "45 Harbor Road", Description: "Pan-Asian kitchen specializing in regional curries"},
	{Name: "Casa del Mar", Address: "7 Seaside Promenade", Description: "Seafood restaurant overlooking the marina"},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	cfg.Log.Info("Seeding restaurants", "count", len(restaurants))

	repo := restaurantrepo.NewMongoRestaurantRepository(cfg)

	existing, err := repo.Count(ctx)
	if err != nil {
		cfg.Log.Fatal("Failed to count restaurants", "error", err)
	}
	if existing > 0 {
		cfg.Log.Info("Restaurants already seeded, nothing to do", "existing", existing)
		return
	}

	for i := range restaurants {
		r := restaurants[i]
		if err := repo.Create(ctx, &r); err != nil {
			cfg.Log.Fatal("Failed to seed restaurant", "name", r.Name, "error", err)
		}
		cfg.Log.Info("Seeded restaurant", "id", r.ID, "name", r.Name)
	}

	cfg.Log.Info("Seeding completed")
}
