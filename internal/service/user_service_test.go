package service

import (
	"context"
	"strings"
	"testing"

	"trove/internal/models"
	"trove/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserFixture(t *testing.T) (*UserService, *gorm.DB, *models.User, *models.User) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	admin := &models.User{Username: "admin", Email: "admin@example.com", Password: "hashed", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)
	user := &models.User{Username: "member", Email: "member@example.com", Password: "hashed", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)

	return svc, db, admin, user
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates provided fields only", func(t *testing.T) {
		svc, _, _, user := newUserFixture(t)

		updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID: user.ID,
			Phone:  "+4915123456789",
		})
		require.NoError(t, err)
		assert.Equal(t, "member", updated.Username)
		assert.Equal(t, "+4915123456789", updated.Phone)
	})

	t.Run("overlong username rejected", func(t *testing.T) {
		svc, _, _, user := newUserFixture(t)

		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   user.ID,
			Username: strings.Repeat("x", 31),
		})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("unknown user is NotFound", func(t *testing.T) {
		svc, _, _, _ := newUserFixture(t)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 99999, Username: "ghost"})
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestUserServiceSetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes a user", func(t *testing.T) {
		svc, _, admin, user := newUserFixture(t)

		promoted, err := svc.SetRole(ctx, admin.ID, user.ID, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, promoted.Role)
	})

	t.Run("non-admin cannot change roles", func(t *testing.T) {
		svc, _, _, user := newUserFixture(t)

		_, err := svc.SetRole(ctx, user.ID, user.ID, models.RoleAdmin)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	})

	t.Run("admin cannot demote themselves", func(t *testing.T) {
		svc, _, admin, _ := newUserFixture(t)

		_, err := svc.SetRole(ctx, admin.ID, admin.ID, models.RoleUser)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		svc, _, admin, user := newUserFixture(t)

		_, err := svc.SetRole(ctx, admin.ID, user.ID, models.Role("superuser"))
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("stale admin claim is re-checked against the database", func(t *testing.T) {
		svc, db, admin, user := newUserFixture(t)

		// Demote the admin directly, simulating a role change after their
		// token was issued.
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).
			Update("role", models.RoleUser).Error)

		_, err := svc.SetRole(ctx, admin.ID, user.ID, models.RoleAdmin)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	})
}

func TestUserServiceListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _, admin, user := newUserFixture(t)

	users, err := svc.ListUsers(ctx, admin.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.ListUsers(ctx, user.ID, 10, 0)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}
