package repositories

import (
	"context"
	"fmt"

	"collab-project/backend/management-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AreaRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewAreaRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *AreaRepository {
	return &AreaRepository{collection: collection, breaker: breaker}
}

func (r *AreaRepository) ListAreas(ctx context.Context) ([]models.Area, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := r.collection.Find(ctx, bson.M{}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var areas []models.Area
		if err := cursor.All(ctx, &areas); err != nil {
			return nil, err
		}
		return areas, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing areas: %v", models.ErrPersistence, err)
	}
	return result.([]models.Area), nil
}

func (r *AreaRepository) SeedAreas(ctx context.Context, names []models.AreaName) error {
	for _, name := range names {
		filter := bson.M{"name": name}
		update := bson.M{"$setOnInsert": bson.M{"name": name}}
		_, err := r.breaker.Execute(func() (interface{}, error) {
			return r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: seeding area %s: %v", models.ErrPersistence, name, err)
		}
	}
	return nil
}
