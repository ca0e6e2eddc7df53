package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	restauranterrors "github.com/iBubenok/restaurant-booking-system/internal/restaurants/errors"
	"github.com/iBubenok/restaurant-booking-system/pkg/config"
	"github.com/iBubenok/restaurant-booking-system/pkg/model"
)

const (
	CollectionName         = "restaurants"
	CountersCollectionName = "counters"
)

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *model.Restaurant) error
	FindByID(ctx context.Context, id int64) (*model.Restaurant, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, error)
	Count(ctx context.Context) (int64, error)
}

type mongoRestaurantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewMongoRestaurantRepository(cfg *config.Config) RestaurantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRestaurantRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		counters:   db.Collection(CountersCollectionName),
	}
}

func (r *mongoRestaurantRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRestaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if restaurant.ID == 0 {
		opts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)

		var counter struct {
			Seq int64 `bson:"seq"`
		}
		err := r.counters.FindOneAndUpdate(ctx,
			bson.M{"_id": CollectionName},
			bson.M{"$inc": bson.M{"seq": int64(1)}},
			opts,
		).Decode(&counter)
		if err != nil {
			return fmt.Errorf("failed to advance %s sequence: %w", CollectionName, err)
		}
		restaurant.ID = counter.Seq
	}

	if _, err := r.collection.InsertOne(ctx, restaurant); err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (r *mongoRestaurantRepository) FindByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var restaurant model.Restaurant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&restaurant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, restauranterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find restaurant: %w", err)
	}

	return &restaurant, nil
}

func (r *mongoRestaurantRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	var restaurants []*model.Restaurant
	if err = cursor.All(ctx, &restaurants); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants: %w", err)
	}

	return restaurants, nil
}

func (r *mongoRestaurantRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}

	return count, nil
}
