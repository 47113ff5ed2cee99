package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
)

// UsersStore manages system users and their system roles
type UsersStore interface {
	// GetSystemUserByIdentity returns the user matching the token's guid or
	// identifier and source, or nil when not registered.
	GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error)

	// GetSystemUser returns ErrNotFound for unknown ids.
	GetSystemUser(ctx context.Context, systemUserID int) (*model.SystemUser, error)

	// ListSystemUsers returns active users.
	ListSystemUsers(ctx context.Context) ([]model.SystemUser, error)

	// AddSystemUser registers (or re-activates) a user and grants the role
	// when one is given.
	AddSystemUser(ctx context.Context, u model.NewUser, actorID int) (*model.SystemUser, error)

	// RemoveSystemUser end-dates a user after removing its roles and
	// participations. Returns ErrSoleProjectLead when the user is the only
	// Project Lead of any project.
	RemoveSystemUser(ctx context.Context, systemUserID, actorID int) error

	// AddSystemRoles grants the roles not already held.
	AddSystemRoles(ctx context.Context, systemUserID int, roleIDs []int, actorID int) error

	RemoveSystemRole(ctx context.Context, systemUserID, roleID int) error

	// SoleLeadProjects lists projects on which the user is the only Project Lead.
	SoleLeadProjects(ctx context.Context, systemUserID int) ([]model.SoleLeadProject, error)
}
