package service

import (
	"context"
	"testing"

	"trove/internal/models"
	"trove/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *models.User, *models.User) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db))

	recipient := &models.User{Username: "recipient", Email: "recipient@example.com", Password: "hashed", Role: models.RoleUser}
	require.NoError(t, db.Create(recipient).Error)
	other := &models.User{Username: "other", Email: "other@example.com", Password: "hashed", Role: models.RoleUser}
	require.NoError(t, db.Create(other).Error)

	return svc, recipient, other
}

func TestNotificationServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, recipient, other := newNotificationFixture(t)

	claim := &models.Claim{ID: 1, ItemID: 2, UserID: recipient.ID}
	svc.ClaimCreated(ctx, claim, recipient.ID)
	svc.ClaimResolved(ctx, claim.ID, recipient.ID, models.ClaimStatusRejected, "no proof")

	notifications, err := svc.ListForUser(ctx, recipient.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	var resolved *models.Notification
	for i := range notifications {
		if notifications[i].ClaimID != nil && notifications[i].ItemID == nil {
			resolved = &notifications[i]
		}
	}
	require.NotNil(t, resolved)
	assert.Contains(t, resolved.Message, "rejected")
	assert.Contains(t, resolved.Message, "no proof")

	target := notifications[0]

	t.Run("only the recipient can mark read", func(t *testing.T) {
		err := svc.MarkRead(ctx, other.ID, target.ID)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

		require.NoError(t, svc.MarkRead(ctx, recipient.ID, target.ID))
	})

	t.Run("only the recipient can delete", func(t *testing.T) {
		err := svc.Delete(ctx, other.ID, target.ID)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

		require.NoError(t, svc.Delete(ctx, recipient.ID, target.ID))

		remaining, err := svc.ListForUser(ctx, recipient.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
