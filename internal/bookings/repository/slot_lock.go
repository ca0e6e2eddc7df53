package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/iBubenok/restaurant-booking-system/internal/bookings/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

const SlotLocksCollectionName = "slot_locks"

// SlotLockRepository serializes workers that want to decide the same
// (restaurant, datetime) slot. The lock is a document whose _id is the
// slot key; the unique index turns a concurrent acquire into a duplicate
// key error. A TTL index reaps locks left behind by crashed workers.
type SlotLockRepository interface {
	Acquire(ctx context.Context, restaurantID int64, slot time.Time) (*model.SlotLock, error)
	Release(ctx context.Context, lockID string) error
	WithSlotLock(ctx context.Context, restaurantID int64, slot time.Time, fn func(ctx context.Context) error) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLocksCollectionName),
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, restaurantID int64, slot time.Time) (*model.SlotLock, error) {
	now := time.Now().UTC()
	lock := &model.SlotLock{
		ID:        model.SlotLockID(restaurantID, slot),
		ExpiresAt: now.Add(r.cfg.SlotLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrSlotLockHeld
		}
		return nil, fmt.Errorf("failed to acquire slot lock %s: %w", lock.ID, err)
	}

	return lock, nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to release slot lock %s: %w", lockID, err)
	}
	return nil
}

// WithSlotLock runs fn while holding the slot lock. Acquisition retries on
// an interval until the wait timeout; a held lock past the deadline yields
// ErrSlotLockTimeout so the caller can retry the whole operation later.
// The lock is released even when fn fails.
func (r *mongoSlotLockRepository) WithSlotLock(ctx context.Context, restaurantID int64, slot time.Time, fn func(ctx context.Context) error) error {
	deadline := time.Now().Add(r.cfg.SlotLockWaitTimeout)

	var lock *model.SlotLock
	for {
		var err error
		lock, err = r.Acquire(ctx, restaurantID, slot)
		if err == nil {
			break
		}
		if err != bookingserrors.ErrSlotLockHeld {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrSlotLockTimeout, model.SlotLockID(restaurantID, slot))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.SlotLockRetryInterval):
		}
	}

	defer func() {
		// Release with a fresh context so cancellation of the caller does
		// not leave the lock to the TTL reaper.
		releaseCtx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		defer cancel()
		if err := r.Release(releaseCtx, lock.ID); err != nil {
			r.cfg.Log.Error("failed to release slot lock", "lock_id", lock.ID, "error", err)
		}
	}()

	return fn(ctx)
}
