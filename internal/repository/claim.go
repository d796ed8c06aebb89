package repository

import (
	"context"
	"errors"

	"trove/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// ClaimRepository defines the interface for claim data operations
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uint) (*models.Claim, error)
	List(ctx context.Context, limit, offset int) ([]models.Claim, error)
	ListByItem(ctx context.Context, itemID uint) ([]models.Claim, error)
	ListByClaimant(ctx context.Context, userID uint) ([]models.Claim, error)
	ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error)
	// ListActiveByItem returns the claims still competing for an item.
	ListActiveByItem(ctx context.Context, itemID uint) ([]models.Claim, error)
	HasActiveClaim(ctx context.Context, userID, itemID uint) (bool, error)
	// Transition moves a claim to the target status, but only from a status
	// the state machine allows as a source. Losing a race to another
	// transition surfaces as INVALID_STATE, never as a silent overwrite.
	Transition(ctx context.Context, claimID uint, target models.ClaimStatus) error
	RejectWithReason(ctx context.Context, claimID uint, reason string) error
	// UpdatePendingDetails writes the claimant-editable fields, but only
	// while the claim is still pending. A claim resolved between the
	// caller's read and this write is left untouched.
	UpdatePendingDetails(ctx context.Context, claimID uint, description, proofImagePath *string) error
	// DeleteInStatus removes the claim only if it still has the status the
	// caller observed, so a concurrent transition cannot be wiped out.
	DeleteInStatus(ctx context.Context, claimID uint, status models.ClaimStatus) error
	// RejectSiblings transitions every other active claim on the item to
	// rejected and returns how many were swept. Runs in the approval
	// transaction so winners and losers commit together.
	RejectSiblings(ctx context.Context, itemID, winningClaimID uint, reason string) (int64, error)
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *models.Claim) error {
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		// The partial unique index on (user_id, item_id) for active statuses
		// closes the check-then-insert race under concurrent submissions.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.NewInvalidStateError("You already have an active claim for this item")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Preload("Item.User").
		First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Claim", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &claim, nil
}

func (r *claimRepository) List(ctx context.Context, limit, offset int) ([]models.Claim, error) {
	var claims []models.Claim
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Order("claim_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) ListByItem(ctx context.Context, itemID uint) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Preload("User").
		Order("claim_date ASC").
		Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) ListByClaimant(ctx context.Context, userID uint) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Item").
		Order("claim_date DESC").
		Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Preload("User").
		Preload("Item").
		Order("claim_date ASC").
		Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) ListActiveByItem(ctx context.Context, itemID uint) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND status IN ?", itemID, models.ActiveClaimStatuses()).
		Preload("User").
		Order("claim_date ASC").
		Find(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

func (r *claimRepository) HasActiveClaim(ctx context.Context, userID, itemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("user_id = ? AND item_id = ? AND status IN ?", userID, itemID, models.ActiveClaimStatuses()).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *claimRepository) Transition(ctx context.Context, claimID uint, target models.ClaimStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND status IN ?", claimID, models.TransitionSources(target)).
		Update("status", target)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Claim is not in a status that allows this transition")
	}
	return nil
}

func (r *claimRepository) RejectWithReason(ctx context.Context, claimID uint, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND status IN ?", claimID, models.TransitionSources(models.ClaimStatusRejected)).
		Updates(map[string]interface{}{
			"status":           models.ClaimStatusRejected,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Claim is not in a status that allows this transition")
	}
	return nil
}

func (r *claimRepository) UpdatePendingDetails(ctx context.Context, claimID uint, description, proofImagePath *string) error {
	fields := map[string]interface{}{}
	if description != nil {
		fields["description"] = *description
	}
	if proofImagePath != nil {
		fields["proof_image_path"] = *proofImagePath
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND status = ?", claimID, models.ClaimStatusPending).
		Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Only pending claims can be updated")
	}
	return nil
}

func (r *claimRepository) DeleteInStatus(ctx context.Context, claimID uint, status models.ClaimStatus) error {
	res := r.db.WithContext(ctx).
		Where("status = ?", status).
		Delete(&models.Claim{}, claimID)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Claim status changed while you were editing, reload and retry")
	}
	return nil
}

func (r *claimRepository) RejectSiblings(ctx context.Context, itemID, winningClaimID uint, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("item_id = ? AND id != ? AND status IN ?", itemID, winningClaimID, models.ActiveClaimStatuses()).
		Updates(map[string]interface{}{
			"status":           models.ClaimStatusRejected,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
