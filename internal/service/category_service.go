package service

import (
	"context"
	"strings"

	"trove/internal/models"
	"trove/internal/repository"
)

// CategoryService manages the item category taxonomy. Mutations are admin
// only.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
}

// NewCategoryService returns a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository, userRepo repository.UserRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, userRepo: userRepo}
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, actorID uint, name, description string) (*models.Category, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	if existing, err := s.categoryRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, models.NewValidationError("A category with this name already exists")
	}

	category := &models.Category{Name: name, Description: description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update renames or redescribes a category.
func (s *CategoryService) Update(ctx context.Context, actorID, categoryID uint, name, description string) (*models.Category, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	category.Name = name
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, actorID, categoryID uint) error {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return err
	}
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return err
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, categoryID)
}

// GetByID returns a single category.
func (s *CategoryService) GetByID(ctx context.Context, categoryID uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, categoryID)
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}
