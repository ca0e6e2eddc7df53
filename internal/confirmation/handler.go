package confirmation

import (
	"context"
	"errors"

	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/events"
	"github.com/iBubenok/restaurant-booking-system/pkg/kafka"
	kafkamw "github.com/iBubenok/restaurant-booking-system/pkg/kafka/middleware"
)

// EventHandler adapts the engine to the consumer loop. It owns the mapping
// from processing outcomes to consumer semantics: permanent errors are
// acknowledged and diverted to the DLQ, transient errors leave the offset
// uncommitted so the broker redelivers.
type EventHandler struct {
	engine *Engine
	cfg    *config.Config
}

func NewEventHandler(engine *Engine, cfg *config.Config) *EventHandler {
	return &EventHandler{
		engine: engine,
		cfg:    cfg,
	}
}

func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	env, err := events.ParseEnvelope(msg.Value)
	if err != nil {
		h.cfg.Log.Error("Dropping malformed event",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		kafkamw.GetMetrics().CountPoisonMessage()
		return kafka.NewPermanentError("malformed event envelope", err)
	}

	if env.EventType != events.TypeBookingCreated {
		h.cfg.Log.Info("Ignoring event of unhandled type",
			"event_type", env.EventType,
			"topic", msg.Topic,
			"offset", msg.Offset,
		)
		return nil
	}

	payload, err := env.DecodeBookingCreated()
	if err != nil {
		h.cfg.Log.Error("Dropping undecodable booking.created event",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		kafkamw.GetMetrics().CountPoisonMessage()
		return kafka.NewPermanentError("malformed booking.created payload", err)
	}

	h.cfg.Log.Info("Processing booking.created event",
		"booking_id", payload.BookingID,
		"restaurant_id", payload.RestaurantID,
		"offset", msg.Offset,
	)

	status, err := h.engine.Process(ctx, payload.BookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			h.cfg.Log.Error("Event references unknown booking",
				"booking_id", payload.BookingID,
				"error", err,
			)
			kafkamw.GetMetrics().CountPoisonMessage()
			return kafka.NewPermanentError("booking not found", err)
		}
		return kafka.NewTransientError("confirmation did not complete", err)
	}

	h.cfg.Log.Info("Event processed",
		"booking_id", payload.BookingID,
		"status", status,
	)
	return nil
}
