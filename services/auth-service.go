package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	Collaborators CollaboratorStore
}

func NewAuthService(collaborators CollaboratorStore) *AuthService {
	return &AuthService{Collaborators: collaborators}
}

// AuthResult is the payload returned after a successful register or login.
type AuthResult struct {
	Token string          `json:"token"`
	User  AuthUserSummary `json:"user"`
}

type AuthUserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Register creates a NORMAL collaborator with no areas. Areas and role are
// assigned later by a GESTOR through the collaborators endpoints.
func (s *AuthService) Register(ctx context.Context, name, email, password string, age *int) (*AuthResult, error) {
	if _, err := s.Collaborators.FindByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailInUse
	} else if !errors.Is(err, models.ErrCollaboratorNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	collaborator := &models.Collaborator{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Age:          age,
		Role:         models.RoleNormal,
		Areas:        []models.AreaName{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Collaborators.Insert(ctx, collaborator); err != nil {
		return nil, err
	}

	return s.result(collaborator)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	collaborator, err := s.Collaborators.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrCollaboratorNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utils.CheckPassword(collaborator.PasswordHash, password); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.result(collaborator)
}

func (s *AuthService) result(collaborator *models.Collaborator) (*AuthResult, error) {
	token, err := utils.GenerateToken(collaborator.ID.Hex(), collaborator.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %v", err)
	}
	return &AuthResult{
		Token: token,
		User: AuthUserSummary{
			ID:    collaborator.ID.Hex(),
			Name:  collaborator.Name,
			Email: collaborator.Email,
			Role:  collaborator.Role,
		},
	}, nil
}
