package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"collab-project/backend/management-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollaboratorRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewCollaboratorRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *CollaboratorRepository {
	return &CollaboratorRepository{collection: collection, breaker: breaker}
}

func (r *CollaboratorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collaborator, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		var collaborator models.Collaborator
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&collaborator); err != nil {
			return nil, err
		}
		return &collaborator, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCollaboratorNotFound
		}
		return nil, fmt.Errorf("%w: finding collaborator: %v", models.ErrPersistence, err)
	}
	return result.(*models.Collaborator), nil
}

func (r *CollaboratorRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var collaborators []models.Collaborator
		if err := cursor.All(ctx, &collaborators); err != nil {
			return nil, err
		}
		return collaborators, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: finding collaborators: %v", models.ErrPersistence, err)
	}
	return result.([]models.Collaborator), nil
}

func (r *CollaboratorRepository) FindByEmail(ctx context.Context, email string) (*models.Collaborator, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		var collaborator models.Collaborator
		if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&collaborator); err != nil {
			return nil, err
		}
		return &collaborator, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCollaboratorNotFound
		}
		return nil, fmt.Errorf("%w: finding collaborator by email: %v", models.ErrPersistence, err)
	}
	return result.(*models.Collaborator), nil
}

func (r *CollaboratorRepository) List(ctx context.Context, page, perPage int64, q string) ([]models.Collaborator, int64, error) {
	filter := bson.M{}
	if q != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}

	type listResult struct {
		collaborators []models.Collaborator
		total         int64
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return nil, err
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}}).
			SetSkip((page - 1) * perPage).
			SetLimit(perPage)

		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var collaborators []models.Collaborator
		if err := cursor.All(ctx, &collaborators); err != nil {
			return nil, err
		}
		return listResult{collaborators: collaborators, total: total}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing collaborators: %v", models.ErrPersistence, err)
	}

	lr := result.(listResult)
	return lr.collaborators, lr.total, nil
}

func (r *CollaboratorRepository) Insert(ctx context.Context, collaborator *models.Collaborator) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.InsertOne(ctx, collaborator)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailInUse
		}
		return fmt.Errorf("%w: inserting collaborator: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *CollaboratorRepository) Update(ctx context.Context, collaborator *models.Collaborator) error {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.ReplaceOne(ctx, bson.M{"_id": collaborator.ID}, collaborator)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailInUse
		}
		return fmt.Errorf("%w: updating collaborator: %v", models.ErrPersistence, err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return models.ErrCollaboratorNotFound
	}
	return nil
}

func (r *CollaboratorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return fmt.Errorf("%w: deleting collaborator: %v", models.ErrPersistence, err)
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return models.ErrCollaboratorNotFound
	}
	return nil
}
