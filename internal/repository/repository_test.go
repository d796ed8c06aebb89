package repository

import (
	"context"
	"testing"
	"time"

	"trove/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Claim{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestItem(t *testing.T, db *gorm.DB, reporter *models.User, isLost bool) *models.Item {
	t.Helper()
	category := &models.Category{Name: "Cat-" + reporter.Username + time.Now().String()}
	require.NoError(t, db.Create(category).Error)
	item := &models.Item{
		Title:      "Black umbrella",
		Location:   "Central station",
		IsLost:     isLost,
		UserID:     reporter.ID,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func createTestClaim(t *testing.T, db *gorm.DB, claimant *models.User, item *models.Item, status models.ClaimStatus) *models.Claim {
	t.Helper()
	claim := &models.Claim{
		Description: "It has my initials on the handle",
		Status:      status,
		ClaimDate:   time.Now(),
		UserID:      claimant.ID,
		ItemID:      item.ID,
	}
	require.NoError(t, db.Create(claim).Error)
	return claim
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser}
		require.NoError(t, repo.Create(ctx, user))
		require.NotZero(t, user.ID)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("GetByID missing returns NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("GetByEmail missing returns nil without error", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpdateRole", func(t *testing.T) {
		user := createTestUser(t, db, "bob", models.RoleUser)
		require.NoError(t, repo.UpdateRole(ctx, user.ID, models.RoleAdmin))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Role.IsAdmin())
	})

	t.Run("UpdateRole missing user returns NotFound", func(t *testing.T) {
		err := repo.UpdateRole(ctx, 99999, models.RoleAdmin)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestItemRepositoryClaimedGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	finder := createTestUser(t, db, "finder", models.RoleUser)
	claimant := createTestUser(t, db, "claimant", models.RoleUser)
	item := createTestItem(t, db, finder, false)

	t.Run("MarkClaimed sets winner and date", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, repo.MarkClaimed(ctx, item.ID, claimant.ID, now))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, got.Claimed)
		require.NotNil(t, got.ClaimedByUserID)
		assert.Equal(t, claimant.ID, *got.ClaimedByUserID)
		require.NotNil(t, got.ClaimedDate)
	})

	t.Run("MarkClaimed on claimed item fails with InvalidState", func(t *testing.T) {
		err := repo.MarkClaimed(ctx, item.ID, claimant.ID, time.Now())
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})

	t.Run("RevertClaimed clears all claimed fields", func(t *testing.T) {
		require.NoError(t, repo.RevertClaimed(ctx, item.ID))

		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, got.Claimed)
		assert.Nil(t, got.ClaimedByUserID)
		assert.Nil(t, got.ClaimedDate)
	})

	t.Run("RevertClaimed on unclaimed item fails with InvalidState", func(t *testing.T) {
		err := repo.RevertClaimed(ctx, item.ID)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})
}

func TestItemRepositoryList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	finder := createTestUser(t, db, "lister", models.RoleUser)
	lost := createTestItem(t, db, finder, true)
	found := createTestItem(t, db, finder, false)

	isLost := true
	items, err := repo.List(ctx, ItemFilter{IsLost: &isLost, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, lost.ID, items[0].ID)

	isLost = false
	items, err = repo.List(ctx, ItemFilter{IsLost: &isLost, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, found.ID, items[0].ID)

	items, err = repo.List(ctx, ItemFilter{ReporterID: finder.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestClaimRepositoryTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClaimRepository(db)
	ctx := context.Background()

	finder := createTestUser(t, db, "tfinder", models.RoleUser)
	claimant := createTestUser(t, db, "tclaimant", models.RoleUser)
	item := createTestItem(t, db, finder, false)

	t.Run("pending to forwarded", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)
		require.NoError(t, repo.Transition(ctx, claim.ID, models.ClaimStatusForwardedToAdmin))

		got, err := repo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusForwardedToAdmin, got.Status)
	})

	t.Run("forwarded to approved", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusForwardedToAdmin)
		require.NoError(t, repo.Transition(ctx, claim.ID, models.ClaimStatusApproved))
	})

	t.Run("rejected claim cannot transition again", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusRejected)
		err := repo.Transition(ctx, claim.ID, models.ClaimStatusApproved)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})

	t.Run("approved claim cannot be forwarded", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusApproved)
		err := repo.Transition(ctx, claim.ID, models.ClaimStatusForwardedToAdmin)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})

	t.Run("RejectWithReason records reason", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)
		require.NoError(t, repo.RejectWithReason(ctx, claim.ID, "insufficient proof"))

		got, err := repo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusRejected, got.Status)
		assert.Equal(t, "insufficient proof", got.RejectionReason)
	})

	t.Run("RejectWithReason twice fails with InvalidState", func(t *testing.T) {
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)
		require.NoError(t, repo.RejectWithReason(ctx, claim.ID, "first"))
		err := repo.RejectWithReason(ctx, claim.ID, "second")
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))
	})
}

func TestClaimRepositoryActiveClaims(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClaimRepository(db)
	ctx := context.Background()

	finder := createTestUser(t, db, "afinder", models.RoleUser)
	claimant := createTestUser(t, db, "aclaimant", models.RoleUser)
	rival := createTestUser(t, db, "arival", models.RoleUser)
	item := createTestItem(t, db, finder, false)

	t.Run("HasActiveClaim", func(t *testing.T) {
		has, err := repo.HasActiveClaim(ctx, claimant.ID, item.ID)
		require.NoError(t, err)
		assert.False(t, has)

		createTestClaim(t, db, claimant, item, models.ClaimStatusPending)

		has, err = repo.HasActiveClaim(ctx, claimant.ID, item.ID)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("rejected claim is not active", func(t *testing.T) {
		other := createTestItem(t, db, finder, false)
		createTestClaim(t, db, claimant, other, models.ClaimStatusRejected)

		has, err := repo.HasActiveClaim(ctx, claimant.ID, other.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("RejectSiblings rejects every other active claim", func(t *testing.T) {
		target := createTestItem(t, db, finder, false)
		winner := createTestClaim(t, db, claimant, target, models.ClaimStatusPending)
		loserPending := createTestClaim(t, db, rival, target, models.ClaimStatusPending)
		loserForwarded := createTestClaim(t, db, finder, target, models.ClaimStatusForwardedToAdmin)
		alreadyRejected := createTestClaim(t, db, rival, target, models.ClaimStatusRejected)

		n, err := repo.RejectSiblings(ctx, target.ID, winner.ID, "another claim was approved")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		for _, id := range []uint{loserPending.ID, loserForwarded.ID} {
			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.ClaimStatusRejected, got.Status)
			assert.Equal(t, "another claim was approved", got.RejectionReason)
		}

		// Winner untouched.
		got, err := repo.GetByID(ctx, winner.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusPending, got.Status)

		// Previously rejected claim keeps its original (empty) reason.
		got, err = repo.GetByID(ctx, alreadyRejected.ID)
		require.NoError(t, err)
		assert.Empty(t, got.RejectionReason)
	})

	t.Run("ListActiveByItem", func(t *testing.T) {
		target := createTestItem(t, db, finder, false)
		pending := createTestClaim(t, db, claimant, target, models.ClaimStatusPending)
		forwarded := createTestClaim(t, db, rival, target, models.ClaimStatusForwardedToAdmin)
		createTestClaim(t, db, finder, target, models.ClaimStatusRejected)

		active, err := repo.ListActiveByItem(ctx, target.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)

		ids := []uint{active[0].ID, active[1].ID}
		assert.ElementsMatch(t, []uint{pending.ID, forwarded.ID}, ids)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		forwarded, err := repo.ListByStatus(ctx, models.ClaimStatusForwardedToAdmin)
		require.NoError(t, err)
		for _, claim := range forwarded {
			assert.Equal(t, models.ClaimStatusForwardedToAdmin, claim.Status)
		}
	})
}

func TestClaimRepositoryConditionalWrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClaimRepository(db)
	ctx := context.Background()

	finder := createTestUser(t, db, "cwfinder", models.RoleUser)
	claimant := createTestUser(t, db, "cwclaimant", models.RoleUser)

	newDesc := "the scratch on the lid matches my photos"

	t.Run("UpdatePendingDetails edits a pending claim", func(t *testing.T) {
		item := createTestItem(t, db, finder, false)
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)

		proof := "claims/proof-7.webp"
		err := repo.UpdatePendingDetails(ctx, claim.ID, &newDesc, &proof)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, newDesc, got.Description)
		assert.Equal(t, proof, got.ProofImagePath)
		assert.Equal(t, models.ClaimStatusPending, got.Status)
	})

	t.Run("stale update against a resolved claim is refused", func(t *testing.T) {
		item := createTestItem(t, db, finder, false)
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)

		// A moderator resolves the claim after the claimant loaded the
		// edit form.
		require.NoError(t, repo.Transition(ctx, claim.ID, models.ClaimStatusApproved))

		err := repo.UpdatePendingDetails(ctx, claim.ID, &newDesc, nil)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))

		got, err := repo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusApproved, got.Status)
		assert.NotEqual(t, newDesc, got.Description)
	})

	t.Run("UpdatePendingDetails with nothing to change is a no-op", func(t *testing.T) {
		item := createTestItem(t, db, finder, false)
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)

		require.NoError(t, repo.UpdatePendingDetails(ctx, claim.ID, nil, nil))
	})

	t.Run("DeleteInStatus requires the observed status", func(t *testing.T) {
		item := createTestItem(t, db, finder, false)
		claim := createTestClaim(t, db, claimant, item, models.ClaimStatusPending)
		require.NoError(t, repo.Transition(ctx, claim.ID, models.ClaimStatusApproved))

		// Stale delete, the caller still believes the claim is pending.
		err := repo.DeleteInStatus(ctx, claim.ID, models.ClaimStatusPending)
		assert.Equal(t, models.CodeInvalidState, models.ErrorCode(err))

		got, err := repo.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusApproved, got.Status)

		require.NoError(t, repo.DeleteInStatus(ctx, claim.ID, models.ClaimStatusApproved))
		_, err = repo.GetByID(ctx, claim.ID)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestNotificationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "notified", models.RoleUser)

	notification := &models.Notification{UserID: user.ID, Message: "A new claim was submitted"}
	require.NoError(t, repo.Create(ctx, notification))

	list, err := repo.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	require.NoError(t, repo.MarkRead(ctx, notification.ID))
	list, err = repo.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	require.NoError(t, repo.Delete(ctx, notification.ID))
	list, err = repo.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
