package services

import (
	"context"

	"collab-project/backend/management-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services operate against these store contracts only; the mongo
// implementations live in the repositories package. Lookups for absent rows
// return the models.Err*NotFound sentinels, everything else is a persistence
// failure.

type ProjectStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	List(ctx context.Context, page, perPage int64, q string) ([]models.Project, int64, error)
	Insert(ctx context.Context, project *models.Project) error
	UpdateFields(ctx context.Context, id primitive.ObjectID, update models.ProjectUpdate) error
	UpdateStatus(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MembershipStore owns the project/collaborator association rows.
// AddMembership and RemoveMembership are idempotent: attaching an existing
// pair or detaching a missing one is not an error.
type MembershipStore interface {
	AddMembership(ctx context.Context, projectID, collaboratorID primitive.ObjectID) error
	RemoveMembership(ctx context.Context, projectID, collaboratorID primitive.ObjectID) error
	IsMember(ctx context.Context, projectID, collaboratorID primitive.ObjectID) (bool, error)
	ListMemberIDs(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveByProject(ctx context.Context, projectID primitive.ObjectID) error
	RemoveByCollaborator(ctx context.Context, collaboratorID primitive.ObjectID) error
}

type CollaboratorStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collaborator, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error)
	FindByEmail(ctx context.Context, email string) (*models.Collaborator, error)
	List(ctx context.Context, page, perPage int64, q string) ([]models.Collaborator, int64, error)
	Insert(ctx context.Context, collaborator *models.Collaborator) error
	Update(ctx context.Context, collaborator *models.Collaborator) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AreaStore interface {
	ListAreas(ctx context.Context) ([]models.Area, error)
	SeedAreas(ctx context.Context, names []models.AreaName) error
}
