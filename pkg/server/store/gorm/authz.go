package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/authz"
	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
)

// Ensure AuthzStore implements authz.Store
var _ authz.Store = (*AuthzStore)(nil)

// AuthzStore loads the system user and participation rows the authorizer
// needs.
type AuthzStore struct {
	users        *UsersStore
	participants *ParticipantsStore
}

// NewAuthzStore creates a new AuthzStore
func NewAuthzStore(db *gorm.DB) *AuthzStore {
	return &AuthzStore{
		users:        NewUsersStore(db),
		participants: NewParticipantsStore(db),
	}
}

func (s *AuthzStore) GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error) {
	return s.users.GetSystemUserByIdentity(ctx, id)
}

func (s *AuthzStore) GetParticipation(ctx context.Context, projectID, systemUserID int) (*model.Participant, error) {
	return s.participants.GetParticipation(ctx, projectID, systemUserID)
}
