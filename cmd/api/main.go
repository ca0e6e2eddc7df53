package main

import (
	bookinghandler "github.com/iBubenok/restaurant-booking-system/internal/bookings/handler"
	bookingrepo "github.com/iBubenok/restaurant-booking-system/internal/bookings/repository"
	bookingservice "github.com/iBubenok/restaurant-booking-system/internal/bookings/service"
	"github.com/iBubenok/restaurant-booking-system/internal/bookings/validator"
	restauranthandler "github.com/iBubenok/restaurant-booking-system/internal/restaurants/handler"
	restaurantrepo "github.com/iBubenok/restaurant-booking-system/internal/restaurants/repository"
	restaurantservice "github.com/iBubenok/restaurant-booking-system/internal/restaurants/service"
	"github.com/iBubenok/restaurant-booking-system/pkg/app"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/kafka"
	kafka_config "github.com/iBubenok/restaurant-booking-system/pkg/kafka/config"
	kafkamw "github.com/iBubenok/restaurant-booking-system/pkg/kafka/middleware"
)

const ServiceName = "booking-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	cfg.Log.Info("Starting Booking API service")

	producer := initProducer(cfg)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	bookingHandler, restaurantHandler := initHandlers(cfg, producer)
	serverApp := app.NewApplication(cfg, bookingHandler, restaurantHandler)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamw.MetricsProducerMiddleware())

	return producer
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) (*bookinghandler.BookingHandler, *restauranthandler.RestaurantHandler) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	restaurantRepo := restaurantrepo.NewMongoRestaurantRepository(cfg)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		restaurantRepo,
		producer,
		bookingValidator,
		cfg,
	)
	restaurantService := restaurantservice.NewRestaurantService(restaurantRepo, cfg)

	cfg.Log.Info("Booking API services initialized", "database", cfg.MongoDatabaseName)
	return bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		restauranthandler.NewRestaurantHandler(restaurantService, cfg.Log)
}
