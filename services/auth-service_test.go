package services_test

import (
	"context"
	"testing"

	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/services"
	"collab-project/backend/management-service/utils"

	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*services.AuthService, *fakeCollaboratorStore) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	store := newFakeCollaboratorStore()
	return services.NewAuthService(store), store
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	result, err := service.Register(ctx, "Ana", "ana@empresa.com", "Segredo123", nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, models.RoleNormal, result.User.Role)

	claims, err := utils.ValidateToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.Subject)
	require.Equal(t, string(models.RoleNormal), claims.Role)

	result, err = service.Login(ctx, "ana@empresa.com", "Segredo123")
	require.NoError(t, err)
	require.Equal(t, "ana@empresa.com", result.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "Ana", "ana@empresa.com", "Segredo123", nil)
	require.NoError(t, err)

	_, err = service.Register(ctx, "Outra Ana", "ana@empresa.com", "Segredo456", nil)
	require.ErrorIs(t, err, models.ErrEmailInUse)
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "Ana", "ana@empresa.com", "Segredo123", nil)
	require.NoError(t, err)

	_, err = service.Login(ctx, "ana@empresa.com", "errada")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.Login(context.Background(), "ninguem@empresa.com", "Segredo123")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}
