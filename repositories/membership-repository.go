package repositories

import (
	"context"
	"fmt"
	"time"

	"collab-project/backend/management-service/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MembershipRepository stores one document per (project, collaborator) pair.
// A unique compound index keeps the pair unique; attach and detach are
// idempotent single-document writes.
type MembershipRepository struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

func NewMembershipRepository(collection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *MembershipRepository {
	return &MembershipRepository{collection: collection, breaker: breaker}
}

func (r *MembershipRepository) AddMembership(ctx context.Context, projectID, collaboratorID primitive.ObjectID) error {
	filter := bson.M{"projectId": projectID, "collaboratorId": collaboratorID}
	update := bson.M{"$setOnInsert": bson.M{
		"projectId":      projectID,
		"collaboratorId": collaboratorID,
		"createdAt":      time.Now(),
	}}

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: adding membership: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *MembershipRepository) RemoveMembership(ctx context.Context, projectID, collaboratorID primitive.ObjectID) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.DeleteOne(ctx, bson.M{"projectId": projectID, "collaboratorId": collaboratorID})
	})
	if err != nil {
		return fmt.Errorf("%w: removing membership: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, projectID, collaboratorID primitive.ObjectID) (bool, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.CountDocuments(ctx, bson.M{"projectId": projectID, "collaboratorId": collaboratorID})
	})
	if err != nil {
		return false, fmt.Errorf("%w: checking membership: %v", models.ErrPersistence, err)
	}
	return result.(int64) > 0, nil
}

func (r *MembershipRepository) ListMemberIDs(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := r.collection.Find(ctx, bson.M{"projectId": projectID}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var memberships []models.Membership
		if err := cursor.All(ctx, &memberships); err != nil {
			return nil, err
		}

		ids := make([]primitive.ObjectID, 0, len(memberships))
		for _, m := range memberships {
			ids = append(ids, m.CollaboratorID)
		}
		return ids, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing members: %v", models.ErrPersistence, err)
	}
	return result.([]primitive.ObjectID), nil
}

func (r *MembershipRepository) RemoveByProject(ctx context.Context, projectID primitive.ObjectID) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.DeleteMany(ctx, bson.M{"projectId": projectID})
	})
	if err != nil {
		return fmt.Errorf("%w: removing project memberships: %v", models.ErrPersistence, err)
	}
	return nil
}

func (r *MembershipRepository) RemoveByCollaborator(ctx context.Context, collaboratorID primitive.ObjectID) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return r.collection.DeleteMany(ctx, bson.M{"collaboratorId": collaboratorID})
	})
	if err != nil {
		return fmt.Errorf("%w: removing collaborator memberships: %v", models.ErrPersistence, err)
	}
	return nil
}
