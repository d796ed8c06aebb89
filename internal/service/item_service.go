package service

import (
	"context"
	"log/slog"
	"strings"

	"trove/internal/cache"
	"trove/internal/models"
	"trove/internal/repository"
	"trove/internal/validation"
)

// ItemService provides lost/found item business logic.
type ItemService struct {
	itemRepo     repository.ItemRepository
	claimRepo    repository.ClaimRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	inventory    *cache.Inventory
}

// NewItemService returns a new ItemService. inventory may be nil to disable
// caching.
func NewItemService(
	itemRepo repository.ItemRepository,
	claimRepo repository.ClaimRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	inventory *cache.Inventory,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		claimRepo:    claimRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		inventory:    inventory,
	}
}

// CreateItemInput is the input for reporting a lost or found item.
type CreateItemInput struct {
	ReporterID  uint
	Title       string
	Description string
	Location    string
	IsLost      bool
	CategoryID  uint
}

// UpdateItemInput carries the editable item fields. Nil fields are left
// unchanged.
type UpdateItemInput struct {
	Title       *string
	Description *string
	Location    *string
	CategoryID  *uint
}

// Create reports a new item.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if err := validation.ValidateItemTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateItemLocation(in.Location); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := resolveActor(ctx, s.userRepo, in.ReporterID); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    strings.TrimSpace(in.Location),
		IsLost:      in.IsLost,
		UserID:      in.ReporterID,
		CategoryID:  in.CategoryID,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "item reported",
		"item_id", item.ID,
		"reporter_id", item.UserID,
		"is_lost", item.IsLost,
	)
	return s.itemRepo.GetByID(ctx, item.ID)
}

// GetByID returns an item with its reporter, category and claimant preloaded,
// serving from cache when possible.
func (s *ItemService) GetByID(ctx context.Context, itemID uint) (*models.Item, error) {
	if s.inventory != nil {
		if item, ok := s.inventory.GetItem(ctx, itemID); ok {
			return item, nil
		}
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if s.inventory != nil {
		s.inventory.SetItem(ctx, item)
	}
	return item, nil
}

// List returns items matching the filter, newest first.
func (s *ItemService) List(ctx context.Context, filter repository.ItemFilter) ([]models.Item, error) {
	return s.itemRepo.List(ctx, filter)
}

// Update edits an item's details. Only the reporter or an admin may update,
// and a claimed item is frozen.
func (s *ItemService) Update(ctx context.Context, actorID, itemID uint, in UpdateItemInput) (*models.Item, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(actor, item.UserID, "update this item"); err != nil {
		return nil, err
	}
	if item.Claimed {
		return nil, models.NewInvalidStateError("A claimed item cannot be edited")
	}

	if in.Title != nil {
		if err := validation.ValidateItemTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Location != nil {
		if err := validation.ValidateItemLocation(*in.Location); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		item.Location = strings.TrimSpace(*in.Location)
	}
	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *in.CategoryID
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	if s.inventory != nil {
		s.inventory.InvalidateItem(ctx, itemID)
	}
	return s.itemRepo.GetByID(ctx, itemID)
}

// SetImagePath records the stored photo path for an item. Reporter or admin
// only.
func (s *ItemService) SetImagePath(ctx context.Context, actorID, itemID uint, path string) (*models.Item, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(actor, item.UserID, "update this item"); err != nil {
		return nil, err
	}

	item.ImagePath = path
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	if s.inventory != nil {
		s.inventory.InvalidateItem(ctx, itemID)
	}
	return item, nil
}

// Delete removes an item. Only the reporter or an admin may delete, and a
// claimed item cannot be deleted while its approved claim stands.
func (s *ItemService) Delete(ctx context.Context, actorID, itemID uint) error {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(actor, item.UserID, "delete this item"); err != nil {
		return err
	}
	if item.Claimed {
		return models.NewInvalidStateError("A claimed item cannot be deleted while its approved claim stands")
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}
	if s.inventory != nil {
		s.inventory.InvalidateItem(ctx, itemID)
	}
	slog.InfoContext(ctx, "item deleted", "item_id", itemID, "deleted_by", actor.ID)
	return nil
}
