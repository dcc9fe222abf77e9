package services

import (
	"context"
	"errors"
	"time"

	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CollaboratorService struct {
	Collaborators CollaboratorStore
	Memberships   MembershipStore
}

func NewCollaboratorService(collaborators CollaboratorStore, memberships MembershipStore) *CollaboratorService {
	return &CollaboratorService{
		Collaborators: collaborators,
		Memberships:   memberships,
	}
}

type CollaboratorPage struct {
	Items      []models.CollaboratorView `json:"items"`
	Page       int64                     `json:"page"`
	PerPage    int64                     `json:"perPage"`
	Total      int64                     `json:"total"`
	TotalPages int64                     `json:"totalPages"`
}

type CreateCollaboratorInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
	Regime   *string
	Role     models.Role
	Areas    []models.AreaName
}

// UpdateCollaboratorInput is a partial update; nil fields stay untouched.
// Areas, when present, replaces the whole set.
type UpdateCollaboratorInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
	Regime   *string
	Role     *models.Role
	Areas    *[]models.AreaName
}

func (s *CollaboratorService) List(ctx context.Context, viewer models.Role, page, perPage int64, q string) (*CollaboratorPage, error) {
	collaborators, total, err := s.Collaborators.List(ctx, page, perPage, q)
	if err != nil {
		return nil, err
	}

	items := make([]models.CollaboratorView, 0, len(collaborators))
	for i := range collaborators {
		items = append(items, collaborators[i].ViewFor(viewer))
	}

	return &CollaboratorPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

func (s *CollaboratorService) Get(ctx context.Context, viewer models.Role, id primitive.ObjectID) (*models.CollaboratorView, error) {
	collaborator, err := s.Collaborators.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := collaborator.ViewFor(viewer)
	return &view, nil
}

func (s *CollaboratorService) Create(ctx context.Context, input CreateCollaboratorInput) (*models.CollaboratorView, error) {
	if _, err := s.Collaborators.FindByEmail(ctx, input.Email); err == nil {
		return nil, models.ErrEmailInUse
	} else if !errors.Is(err, models.ErrCollaboratorNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleNormal
	}

	now := time.Now()
	collaborator := &models.Collaborator{
		ID:           primitive.NewObjectID(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Age:          input.Age,
		Regime:       input.Regime,
		Role:         role,
		Areas:        dedupeAreas(input.Areas),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Collaborators.Insert(ctx, collaborator); err != nil {
		return nil, err
	}

	view := collaborator.ViewFor(models.RoleGestor)
	return &view, nil
}

func (s *CollaboratorService) Update(ctx context.Context, id primitive.ObjectID, input UpdateCollaboratorInput) (*models.CollaboratorView, error) {
	collaborator, err := s.Collaborators.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		collaborator.Name = *input.Name
	}
	if input.Email != nil && *input.Email != collaborator.Email {
		if _, err := s.Collaborators.FindByEmail(ctx, *input.Email); err == nil {
			return nil, models.ErrEmailInUse
		} else if !errors.Is(err, models.ErrCollaboratorNotFound) {
			return nil, err
		}
		collaborator.Email = *input.Email
	}
	if input.Password != nil {
		passwordHash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		collaborator.PasswordHash = passwordHash
	}
	if input.Age != nil {
		collaborator.Age = input.Age
	}
	if input.Regime != nil {
		collaborator.Regime = input.Regime
	}
	if input.Role != nil {
		collaborator.Role = *input.Role
	}
	if input.Areas != nil {
		collaborator.Areas = dedupeAreas(*input.Areas)
	}
	collaborator.UpdatedAt = time.Now()

	if err := s.Collaborators.Update(ctx, collaborator); err != nil {
		return nil, err
	}

	view := collaborator.ViewFor(models.RoleGestor)
	return &view, nil
}

// Delete removes the collaborator's membership rows first, then the
// collaborator itself. Affected projects are not re-validated: offboarding is
// administrative cleanup and must not be blocked by project composition.
func (s *CollaboratorService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Collaborators.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.Memberships.RemoveByCollaborator(ctx, id); err != nil {
		return err
	}
	return s.Collaborators.Delete(ctx, id)
}

func dedupeAreas(areas []models.AreaName) []models.AreaName {
	seen := make(map[models.AreaName]bool, len(areas))
	unique := make([]models.AreaName, 0, len(areas))
	for _, a := range areas {
		if !seen[a] {
			seen[a] = true
			unique = append(unique, a)
		}
	}
	return unique
}
