package repository

import (
	"context"
	"errors"
	"time"

	"trove/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemFilter narrows item listings.
type ItemFilter struct {
	IsLost     *bool
	Claimed    *bool
	CategoryID uint
	ReporterID uint
	Limit      int
	Offset     int
}

// ItemRepository defines the interface for item data operations. MarkClaimed
// and RevertClaimed are the consistency guard for the claimed-state invariant:
// they are conditional writes and are only called from inside claim service
// transactions, never directly by handlers.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	// GetByIDForUpdate loads the item while holding a row lock for the
	// remainder of the surrounding transaction. Serializes competing
	// approvals of claims on the same item.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	MarkClaimed(ctx context.Context, itemID, claimantID uint, when time.Time) error
	RevertClaimed(ctx context.Context, itemID uint) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("ClaimedByUser").
		First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *itemRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Item, error) {
	tx := r.db.WithContext(ctx)
	// FOR UPDATE is Postgres-only; sqlite serializes writers on its own, so
	// tests fall back to a plain read inside the transaction.
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item models.Item
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Order("created_at DESC")

	if filter.IsLost != nil {
		q = q.Where("is_lost = ?", *filter.IsLost)
	}
	if filter.Claimed != nil {
		q = q.Where("claimed = ?", *filter.Claimed)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ReporterID != 0 {
		q = q.Where("user_id = ?", filter.ReporterID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Item{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// MarkClaimed flips the item into the claimed state for the winning claimant.
// The claimed = false predicate makes the write conditional: if another
// approval committed first, RowsAffected is zero and the caller's transaction
// aborts with INVALID_STATE instead of overwriting the winner.
func (r *itemRepository) MarkClaimed(ctx context.Context, itemID, claimantID uint, when time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND claimed = ?", itemID, false).
		Updates(map[string]interface{}{
			"claimed":            true,
			"claimed_by_user_id": claimantID,
			"claimed_date":       when,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("This item has already been claimed via another approved claim")
	}
	return nil
}

// RevertClaimed clears the claimed state, winner and date together.
func (r *itemRepository) RevertClaimed(ctx context.Context, itemID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND claimed = ?", itemID, true).
		Updates(map[string]interface{}{
			"claimed":            false,
			"claimed_by_user_id": nil,
			"claimed_date":       nil,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Item is not in a claimed state")
	}
	return nil
}
