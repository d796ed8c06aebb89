package service

import (
	"context"

	"trove/internal/models"
	"trove/internal/repository"
	"trove/internal/validation"
)

// UserService provides user profile and role management.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields. Empty fields are
// left unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Username string
	Phone    string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, actorID uint, limit, offset int) ([]models.User, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "list users"); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Phone != "" {
		if err := validation.ValidatePhone(in.Phone); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Phone = in.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole changes a user's role. Admin only; an admin cannot demote
// themselves, which keeps at least one admin reachable.
func (s *UserService) SetRole(ctx context.Context, actorID, targetID uint, role models.Role) (*models.User, error) {
	actor, err := resolveActor(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "change user roles"); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, models.NewValidationError("Unknown role")
	}
	if actor.ID == targetID && role != models.RoleAdmin {
		return nil, models.NewInvalidStateError("Admins cannot demote themselves")
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}
