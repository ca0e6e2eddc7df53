package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	bookingrepo "github.com/iBubenok/restaurant-booking-system/internal/bookings/repository"
	"github.com/iBubenok/restaurant-booking-system/internal/confirmation"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/kafka"
	kafka_config "github.com/iBubenok/restaurant-booking-system/pkg/kafka/config"
	kafkamw "github.com/iBubenok/restaurant-booking-system/pkg/kafka/middleware"
)

const ServiceName = "booking-worker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	cfg.Log.Info("Starting booking confirmation worker")

	handler := initHandler(cfg)
	consumer := initConsumer(cfg, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := consumer.Start(ctx)

	if closeErr := consumer.Close(); closeErr != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", closeErr)
	}

	if err != nil {
		// A non-zero exit hands recovery to the orchestrator; unacknowledged
		// offsets are redelivered to the next instance.
		cfg.Log.Error("Consumer stopped with error", "error", err)
		stop()
		cfg.Client.GracefulShutdown()
		os.Exit(1)
	}

	cfg.Log.Info("Worker stopped gracefully")
}

func initHandler(cfg *config.Config) *confirmation.EventHandler {
	repo := bookingrepo.NewMongoBookingRepository(cfg)
	locks := bookingrepo.NewSlotLockRepository(cfg)
	checker := confirmation.NewAvailabilityChecker(repo)
	engine := confirmation.NewEngine(repo, locks, checker, cfg)

	cfg.Log.Info("Confirmation engine initialized", "database", cfg.MongoDatabaseName)
	return confirmation.NewEventHandler(engine, cfg)
}

func initConsumer(cfg *config.Config, handler *confirmation.EventHandler) *kafka.Consumer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	consumer, err := kafka.NewConsumer(kafkaCfg, handler.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamw.MetricsConsumerMiddleware())

	return consumer
}
