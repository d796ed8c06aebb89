package service

import (
	"context"

	"trove/internal/models"
	"trove/internal/repository"
)

// Actor is the authenticated principal performing an operation. It is
// untrusted input: the role is always resolved from the user record, not
// taken from the caller.
type Actor struct {
	ID   uint
	Role models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// resolveActor loads the acting user and derives the actor context from the
// persisted record. Every mutating operation goes through this single helper
// so authorization policy cannot diverge per endpoint.
func resolveActor(ctx context.Context, users repository.UserRepository, userID uint) (Actor, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	role := user.Role
	if !role.Valid() {
		role = models.RoleUser
	}
	return Actor{ID: user.ID, Role: role}, nil
}

// requireAdmin rejects non-admin actors with UNAUTHORIZED.
func requireAdmin(actor Actor, action string) error {
	if !actor.IsAdmin() {
		return models.NewUnauthorizedError("You are not authorized to " + action + ". Admin privileges required")
	}
	return nil
}

// requireSelfOrAdmin rejects actors that neither own the resource nor hold
// the admin role.
func requireSelfOrAdmin(actor Actor, ownerID uint, action string) error {
	if actor.ID != ownerID && !actor.IsAdmin() {
		return models.NewUnauthorizedError("You are not authorized to " + action)
	}
	return nil
}
