package services

import (
	"context"
	"testing"
	"time"

	"hotel-pms/auth"
	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t), auth.NewService("test-secret", time.Hour), nil, 4, "http://localhost:3000")
}

func TestUserService_CreateAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, models.RoleReceptionist, UserInput{
		Username:    " desk1 ",
		Password:    "front-desk-pass",
		FullName:    "Front Desk",
		Shift:       "NIGHT",
		DeskNumber:  "2",
		Department:  "ignored for receptionists",
		AccessLevel: "FULL",
	})
	require.NoError(t, err)
	assert.Equal(t, "desk1", user.Username)
	assert.Equal(t, "NIGHT", user.Shift)
	assert.Empty(t, user.Department)
	assert.Empty(t, user.AccessLevel)
	assert.NotEqual(t, "front-desk-pass", user.Password)

	_, err = svc.Create(ctx, models.RoleReceptionist, UserInput{Username: "desk1", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Create(ctx, models.RoleReceptionist, UserInput{Username: "desk2", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)

	result, err := svc.Login(ctx, "desk1", "front-desk-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	claims, err := svc.Tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReceptionist, claims.Role)

	_, err = svc.Login(ctx, "desk1", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "front-desk-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	inactive := false
	_, err = svc.Update(ctx, models.RoleReceptionist, user.ID, UserInput{Active: &inactive})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "desk1", "front-desk-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// role scoping
	_, err = svc.Get(ctx, models.RoleSystemAdmin, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_KeepsLastSystemAdmin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, models.RoleSystemAdmin, UserInput{Username: "root", Password: "root-password"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, models.RoleSystemAdmin, first.ID), ErrConflict)

	second, err := svc.Create(ctx, models.RoleSystemAdmin, UserInput{Username: "root2", Password: "root-password"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, models.RoleSystemAdmin, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, models.RoleSystemAdmin, second.ID), ErrConflict)

	admins, err := svc.List(ctx, models.RoleSystemAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root2", admins[0].Username)
}
