// Package service provides application business logic (claims, items, users, etc.).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trove/internal/cache"
	"trove/internal/models"
	"trove/internal/observability"
	"trove/internal/repository"
	"trove/internal/validation"

	"gorm.io/gorm"
)

// sweepRejectionReason is recorded on sibling claims auto-rejected when a
// competing claim on the same item is approved.
const sweepRejectionReason = "Another claim on this item was approved"

// Notifier delivers notifications about claim activity. Delivery is
// best-effort and happens after the owning transaction commits; a failed
// notification never fails the operation that produced it.
type Notifier interface {
	ClaimCreated(ctx context.Context, claim *models.Claim, finderID uint)
	ClaimForwarded(ctx context.Context, claim *models.Claim)
	ClaimResolved(ctx context.Context, claimID, claimantID uint, status models.ClaimStatus, reason string)
}

// ClaimService owns the claim lifecycle: submission, finder review, admin
// escalation and final resolution. All multi-entity mutations run inside a
// single database transaction.
type ClaimService struct {
	claimRepo repository.ClaimRepository
	itemRepo  repository.ItemRepository
	userRepo  repository.UserRepository
	db        *gorm.DB
	notifier  Notifier
	inventory *cache.Inventory
}

// NewClaimService returns a new ClaimService. notifier and inventory may be
// nil, disabling notifications and cache invalidation respectively.
func NewClaimService(
	claimRepo repository.ClaimRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	notifier Notifier,
	inventory *cache.Inventory,
) *ClaimService {
	return &ClaimService{
		claimRepo: claimRepo,
		itemRepo:  itemRepo,
		userRepo:  userRepo,
		db:        db,
		notifier:  notifier,
		inventory: inventory,
	}
}

// CreateClaimInput is the input for submitting a claim against a found item.
type CreateClaimInput struct {
	ItemID         uint
	ClaimantID     uint
	Description    string
	ProofImagePath string
}

// UpdateClaimInput carries the fields a claimant may edit while a claim is
// still pending. Nil fields are left unchanged.
type UpdateClaimInput struct {
	Description    *string
	ProofImagePath *string
}

// Create submits a new claim in the pending status.
func (s *ClaimService) Create(ctx context.Context, in CreateClaimInput) (*models.Claim, error) {
	if err := validation.ValidateClaimDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	actor, err := resolveActor(ctx, s.userRepo, in.ClaimantID)
	if err != nil {
		return nil, err
	}

	claim := &models.Claim{
		Description:    strings.TrimSpace(in.Description),
		ProofImagePath: in.ProofImagePath,
		Status:         models.ClaimStatusPending,
		ClaimDate:      time.Now(),
		UserID:         actor.ID,
		ItemID:         in.ItemID,
	}

	var finderID uint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := repository.NewItemRepository(tx)
		claims := repository.NewClaimRepository(tx)

		item, err := items.GetByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item.UserID == actor.ID {
			return models.NewInvalidStateError("You cannot claim an item you reported")
		}
		if item.IsLost {
			return models.NewInvalidStateError("Claims can only be made against found items")
		}
		if item.Claimed {
			return models.NewInvalidStateError("This item has already been claimed")
		}

		hasActive, err := claims.HasActiveClaim(ctx, actor.ID, in.ItemID)
		if err != nil {
			return err
		}
		if hasActive {
			return models.NewInvalidStateError("You already have an active claim for this item")
		}

		finderID = item.UserID
		return claims.Create(ctx, claim)
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.ClaimTransitions.WithLabelValues(string(models.ClaimStatusPending)).Inc()
	slog.InfoContext(ctx, "claim created",
		"claim_id", claim.ID,
		"item_id", claim.ItemID,
		"claimant_id", claim.UserID,
	)

	if s.notifier != nil {
		s.notifier.ClaimCreated(ctx, claim, finderID)
	}
	return s.claimRepo.GetByID(ctx, claim.ID)
}

// ForwardToAdmin escalates a pending claim to admin review. Only the finder
// of the claimed item may forward.
func (s *ClaimService) ForwardToAdmin(ctx context.Context, actorID, claimID uint) (*models.Claim, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Item.UserID != actor.ID {
		return nil, models.NewUnauthorizedError("Only the finder of the item can forward a claim to admin review")
	}
	if !claim.Status.CanTransitionTo(models.ClaimStatusForwardedToAdmin) {
		return nil, models.NewInvalidStateError(
			fmt.Sprintf("Claim cannot be forwarded from status %q", claim.Status))
	}

	if err := s.claimRepo.Transition(ctx, claimID, models.ClaimStatusForwardedToAdmin); err != nil {
		return nil, err
	}

	observability.ClaimTransitions.WithLabelValues(string(models.ClaimStatusForwardedToAdmin)).Inc()
	slog.InfoContext(ctx, "claim forwarded to admin review", "claim_id", claimID, "forwarded_by", actor.ID)

	updated, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ClaimForwarded(ctx, updated)
	}
	return updated, nil
}

// Approve resolves a claim in the claimant's favor. Admin only. In a single
// transaction the claim becomes approved, the item is marked claimed by the
// claimant, and every other active claim on the item is rejected.
func (s *ClaimService) Approve(ctx context.Context, actorID, claimID uint) (*models.Claim, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "approve claims"); err != nil {
		return nil, err
	}

	var losers []models.Claim
	var claimantID, itemID uint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claims := repository.NewClaimRepository(tx)
		items := repository.NewItemRepository(tx)

		claim, err := claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if !claim.Status.CanTransitionTo(models.ClaimStatusApproved) {
			return models.NewInvalidStateError(
				fmt.Sprintf("Claim cannot be approved from status %q", claim.Status))
		}

		// Lock the item row so competing approvals serialize here.
		item, err := items.GetByIDForUpdate(ctx, claim.ItemID)
		if err != nil {
			return err
		}
		if item.Claimed {
			return models.NewInvalidStateError("This item has already been claimed via another approved claim")
		}

		siblings, err := claims.ListActiveByItem(ctx, claim.ItemID)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.ID != claim.ID {
				losers = append(losers, sibling)
			}
		}

		now := time.Now()
		if err := items.MarkClaimed(ctx, item.ID, claim.UserID, now); err != nil {
			return err
		}
		if err := claims.Transition(ctx, claim.ID, models.ClaimStatusApproved); err != nil {
			return err
		}
		if _, err := claims.RejectSiblings(ctx, claim.ItemID, claim.ID, sweepRejectionReason); err != nil {
			return err
		}

		claimantID = claim.UserID
		itemID = claim.ItemID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.inventory.InvalidateItem(ctx, itemID)
	observability.ClaimTransitions.WithLabelValues(string(models.ClaimStatusApproved)).Inc()
	observability.ItemsClaimed.Inc()
	if len(losers) > 0 {
		observability.ClaimSweepRejections.Add(float64(len(losers)))
	}
	slog.InfoContext(ctx, "claim approved",
		"claim_id", claimID,
		"approved_by", actor.ID,
		"sibling_rejections", len(losers),
	)

	if s.notifier != nil {
		s.notifier.ClaimResolved(ctx, claimID, claimantID, models.ClaimStatusApproved, "")
		for _, loser := range losers {
			s.notifier.ClaimResolved(ctx, loser.ID, loser.UserID, models.ClaimStatusRejected, sweepRejectionReason)
		}
	}
	return s.claimRepo.GetByID(ctx, claimID)
}

// Reject resolves a claim against the claimant. Admin only. The item is not
// touched; rejecting never unclaims anything.
func (s *ClaimService) Reject(ctx context.Context, actorID, claimID uint, reason string) (*models.Claim, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "reject claims"); err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.Status.CanTransitionTo(models.ClaimStatusRejected) {
		return nil, models.NewInvalidStateError(
			fmt.Sprintf("Claim cannot be rejected from status %q", claim.Status))
	}

	if err := s.claimRepo.RejectWithReason(ctx, claimID, reason); err != nil {
		return nil, err
	}

	observability.ClaimTransitions.WithLabelValues(string(models.ClaimStatusRejected)).Inc()
	slog.InfoContext(ctx, "claim rejected", "claim_id", claimID, "rejected_by", actor.ID)

	if s.notifier != nil {
		s.notifier.ClaimResolved(ctx, claimID, claim.UserID, models.ClaimStatusRejected, reason)
	}
	return s.claimRepo.GetByID(ctx, claimID)
}

// Update edits a claim's description or proof image. Only the claimant may
// update, and only while the claim is still pending.
func (s *ClaimService) Update(ctx context.Context, actorID, claimID uint, in UpdateClaimInput) (*models.Claim, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.UserID != actor.ID {
		return nil, models.NewUnauthorizedError("Only the claimant can update this claim")
	}
	if claim.Status != models.ClaimStatusPending {
		return nil, models.NewInvalidStateError("Only pending claims can be updated")
	}

	var description *string
	if in.Description != nil {
		if err := validation.ValidateClaimDescription(*in.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		trimmed := strings.TrimSpace(*in.Description)
		description = &trimmed
	}

	// The write carries its own pending-only predicate, so a claim resolved
	// between the read above and this point is refused instead of reverted.
	if err := s.claimRepo.UpdatePendingDetails(ctx, claimID, description, in.ProofImagePath); err != nil {
		return nil, err
	}
	return s.claimRepo.GetByID(ctx, claimID)
}

// Delete removes a claim. The claimant may delete their own pending claim.
// An admin may delete a claim in any status; deleting an approved claim
// reverts the item's claimed state in the same transaction.
func (s *ClaimService) Delete(ctx context.Context, actorID, claimID uint) error {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return err
	}

	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(actor, claim.UserID, "delete this claim"); err != nil {
		return err
	}
	if !actor.IsAdmin() && claim.Status != models.ClaimStatusPending {
		return models.NewInvalidStateError("Only pending claims can be deleted")
	}

	if claim.Status == models.ClaimStatusApproved {
		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			items := repository.NewItemRepository(tx)
			claims := repository.NewClaimRepository(tx)
			if err := items.RevertClaimed(ctx, claim.ItemID); err != nil {
				return err
			}
			// Conditional on the status we read, if the claim moved in the
			// meantime the transaction rolls the revert back.
			return claims.DeleteInStatus(ctx, claimID, models.ClaimStatusApproved)
		})
		if txErr != nil {
			return txErr
		}
		s.inventory.InvalidateItem(ctx, claim.ItemID)
		observability.ItemsClaimed.Dec()
		slog.InfoContext(ctx, "approved claim deleted, item reverted",
			"claim_id", claimID,
			"item_id", claim.ItemID,
			"deleted_by", actor.ID,
		)
		return nil
	}

	if err := s.claimRepo.DeleteInStatus(ctx, claimID, claim.Status); err != nil {
		return err
	}
	slog.InfoContext(ctx, "claim deleted", "claim_id", claimID, "deleted_by", actor.ID)
	return nil
}

// GetByID returns a claim with its claimant and item preloaded.
func (s *ClaimService) GetByID(ctx context.Context, claimID uint) (*models.Claim, error) {
	return s.claimRepo.GetByID(ctx, claimID)
}

// List returns claims ordered newest first.
func (s *ClaimService) List(ctx context.Context, limit, offset int) ([]models.Claim, error) {
	return s.claimRepo.List(ctx, limit, offset)
}

// ListByItem returns all claims against an item.
func (s *ClaimService) ListByItem(ctx context.Context, itemID uint) ([]models.Claim, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.claimRepo.ListByItem(ctx, itemID)
}

// ListByClaimant returns all claims submitted by a user.
func (s *ClaimService) ListByClaimant(ctx context.Context, userID uint) ([]models.Claim, error) {
	return s.claimRepo.ListByClaimant(ctx, userID)
}

// ListForAdminReview returns claims awaiting admin review.
func (s *ClaimService) ListForAdminReview(ctx context.Context, actorID uint) ([]models.Claim, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "review forwarded claims"); err != nil {
		return nil, err
	}
	return s.claimRepo.ListByStatus(ctx, models.ClaimStatusForwardedToAdmin)
}
