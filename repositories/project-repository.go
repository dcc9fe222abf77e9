package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"collab-project/backend/management-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectRepository stores projects in the projects collection. Every
// round-trip goes through the circuit breaker so a failing store does not pile
// up in-flight requests.
type ProjectRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewProjectRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *ProjectRepository {
	return &ProjectRepository{collection: collection, breaker: breaker}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		var project models.Project
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project); err != nil {
			return nil, err
		}
		return &project, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrProjectNotFound
		}
		return nil, fmt.Errorf("%w: finding project: %v", models.ErrPersistence, err)
	}
	return result.(*models.Project), nil
}

func (r *ProjectRepository) List(ctx context.Context, page, perPage int64, q string) ([]models.Project, int64, error) {
	filter := bson.M{}
	if q != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}

	type listResult struct {
		projects []models.Project
		total    int64
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return nil, err
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * perPage).
			SetLimit(perPage)

		cursor, err := r.collection.Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var projects []models.Project
		if err := cursor.All(ctx, &projects); err != nil {
			return nil, err
		}
		return listResult{projects: projects, total: total}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing projects: %v", models.ErrPersistence, err)
	}

	lr := result.(listResult)
	return lr.projects, lr.total, nil
}

func (r *ProjectRepository) Insert(ctx context.Context, project *models.Project) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.InsertOne(ctx, project)
	})
	if err != nil {
		return fmt.Errorf("%w: inserting project: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *ProjectRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, update models.ProjectUpdate) error {
	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Deadline != nil {
		set["deadline"] = *update.Deadline
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Technologies != nil {
		set["technologies"] = *update.Technologies
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	})
	if err != nil {
		return fmt.Errorf("%w: updating project fields: %v", models.ErrPersistence, err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, project *models.Project) error {
	update := bson.M{
		"$set": bson.M{
			"status":    project.Status,
			"updatedAt": project.UpdatedAt,
		},
	}
	if project.CompletedAt != nil {
		update["$set"].(bson.M)["completedAt"] = *project.CompletedAt
	} else {
		update["$unset"] = bson.M{"completedAt": ""}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.UpdateOne(ctx, bson.M{"_id": project.ID}, update)
	})
	if err != nil {
		return fmt.Errorf("%w: updating project status: %v", models.ErrPersistence, err)
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"_id": id})
	})
	if err != nil {
		return fmt.Errorf("%w: deleting project: %v", models.ErrPersistence, err)
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}
