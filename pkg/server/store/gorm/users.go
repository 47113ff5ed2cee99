package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/identity"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

const systemUserSelect = `SELECT
  su.system_user_id,
  su.user_identifier,
  uis.name AS identity_source,
  su.user_guid,
  su.email,
  su.display_name,
  su.record_end_date,
  COALESCE(array_remove(array_agg(sr.system_role_id ORDER BY sr.system_role_id), NULL), '{}') AS role_ids,
  COALESCE(array_remove(array_agg(sr.name ORDER BY sr.system_role_id), NULL), '{}') AS role_names
FROM system_user su
JOIN user_identity_source uis ON uis.user_identity_source_id = su.user_identity_source_id
LEFT JOIN system_user_role sur ON sur.system_user_id = su.system_user_id
LEFT JOIN system_role sr ON sr.system_role_id = sur.system_role_id AND sr.record_end_date IS NULL`

const systemUserGroup = `GROUP BY su.system_user_id, uis.name`

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// GetSystemUserByIdentity matches on the user guid first, then on the
// identifier within its identity source.
func (s *UsersStore) GetSystemUserByIdentity(ctx context.Context, id *identity.Identity) (*model.SystemUser, error) {
	if id == nil {
		return nil, nil
	}
	db := s.db.WithContext(ctx)

	if id.UserGUID != "" {
		u, err := findSystemUser(db, "lower(su.user_guid) = lower(?)", id.UserGUID)
		if err != nil || u != nil {
			return u, err
		}
	}
	if id.UserIdentifier == "" || id.IdentitySource == "" {
		return nil, nil
	}
	return findSystemUser(db, "lower(su.user_identifier) = lower(?) AND uis.name = ?", id.UserIdentifier, id.IdentitySource)
}

func (s *UsersStore) GetSystemUser(ctx context.Context, systemUserID int) (*model.SystemUser, error) {
	u, err := findSystemUser(s.db.WithContext(ctx), "su.system_user_id = ?", systemUserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (s *UsersStore) ListSystemUsers(ctx context.Context) ([]model.SystemUser, error) {
	users := []model.SystemUser{}
	err := s.db.WithContext(ctx).Raw(systemUserSelect + `
WHERE su.record_end_date IS NULL
` + systemUserGroup + `
ORDER BY su.system_user_id`).Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list system users: %w", err)
	}
	return users, nil
}

func (s *UsersStore) AddSystemUser(ctx context.Context, u model.NewUser, actorID int) (*model.SystemUser, error) {
	var systemUserID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := ensureSystemUser(tx, u.UserIdentifier, u.IdentitySource, u.UserGUID, u.Email, u.DisplayName, actorID)
		if err != nil {
			return err
		}
		systemUserID = id

		if u.RoleID == 0 {
			return nil
		}
		return addSystemRoles(tx, id, []int{u.RoleID}, actorID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSystemUser(ctx, systemUserID)
}

func (s *UsersStore) RemoveSystemUser(ctx context.Context, systemUserID, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := findSystemUser(tx, "su.system_user_id = ?", systemUserID)
		if err != nil {
			return err
		}
		if !u.Active() {
			return store.ErrNotFound
		}

		projects, err := soleLeadProjects(tx, systemUserID)
		if err != nil {
			return err
		}
		if len(projects) > 0 {
			return store.ErrSoleProjectLead
		}

		stmt, err := queries.RemoveAllSystemRoles(systemUserID)
		if err != nil {
			return err
		}
		if _, err := exec(tx, stmt); err != nil {
			return fmt.Errorf("failed to remove system roles: %w", err)
		}

		stmt, err = queries.DeleteUserParticipations(systemUserID)
		if err != nil {
			return err
		}
		if _, err := exec(tx, stmt); err != nil {
			return fmt.Errorf("failed to remove participations: %w", err)
		}

		stmt, err = queries.DeactivateSystemUser(systemUserID, actorID)
		if err != nil {
			return err
		}
		if _, err := exec(tx, stmt); err != nil {
			return fmt.Errorf("failed to deactivate system user: %w", err)
		}
		return nil
	})
}

func (s *UsersStore) AddSystemRoles(ctx context.Context, systemUserID int, roleIDs []int, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := findSystemUser(tx, "su.system_user_id = ?", systemUserID)
		if err != nil {
			return err
		}
		if u == nil {
			return store.ErrNotFound
		}
		return addSystemRoles(tx, systemUserID, roleIDs, actorID)
	})
}

func (s *UsersStore) RemoveSystemRole(ctx context.Context, systemUserID, roleID int) error {
	stmt, err := queries.RemoveSystemRole(systemUserID, roleID)
	if err != nil {
		return err
	}
	n, err := exec(s.db.WithContext(ctx), stmt)
	if err != nil {
		return fmt.Errorf("failed to remove system role: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UsersStore) SoleLeadProjects(ctx context.Context, systemUserID int) ([]model.SoleLeadProject, error) {
	return soleLeadProjects(s.db.WithContext(ctx), systemUserID)
}

// findSystemUser returns nil when no user matches.
func findSystemUser(db *gorm.DB, where string, args ...interface{}) (*model.SystemUser, error) {
	var u model.SystemUser
	res := db.Raw(systemUserSelect+"\nWHERE "+where+"\n"+systemUserGroup+"\nLIMIT 1", args...).Scan(&u)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch system user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &u, nil
}

// ensureSystemUser returns the id of the user with the identifier in the
// identity source, re-activating it when end-dated, or registers a new one.
func ensureSystemUser(tx *gorm.DB, identifier, source, guid, email, displayName string, actorID int) (int, error) {
	existing, err := findSystemUser(tx, "lower(su.user_identifier) = lower(?) AND uis.name = ?", identifier, source)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if existing.Active() && (guid == "" || existing.GUID != nil) {
			return existing.ID, nil
		}
		stmt, err := queries.ActivateSystemUser(existing.ID, guid)
		if err != nil {
			return 0, err
		}
		if _, err := exec(tx, stmt); err != nil {
			return 0, fmt.Errorf("failed to activate system user: %w", err)
		}
		return existing.ID, nil
	}

	stmt, err := queries.InsertSystemUser(identifier, source, guid, email, displayName, actorID)
	if err != nil {
		return 0, err
	}
	var id int
	n, err := scan(tx, stmt, &id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert system user: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", store.ErrUnknownIdentitySource, source)
	}
	return id, nil
}

func addSystemRoles(tx *gorm.DB, systemUserID int, roleIDs []int, actorID int) error {
	if len(roleIDs) == 0 {
		return nil
	}
	stmt, err := queries.AddSystemRoles(systemUserID, roleIDs, actorID)
	if err != nil {
		return err
	}
	if _, err := exec(tx, stmt); err != nil {
		return fmt.Errorf("failed to add system roles: %w", err)
	}
	return nil
}

func soleLeadProjects(db *gorm.DB, systemUserID int) ([]model.SoleLeadProject, error) {
	projects := []model.SoleLeadProject{}
	err := db.Raw(`SELECT p.project_id, p.name
FROM project p
JOIN project_participation pp ON pp.project_id = p.project_id
JOIN project_role pr ON pr.project_role_id = pp.project_role_id
WHERE pp.system_user_id = ?
  AND pr.name = ?
  AND NOT EXISTS (
    SELECT 1
    FROM project_participation other
    JOIN project_role opr ON opr.project_role_id = other.project_role_id
    WHERE other.project_id = p.project_id
      AND other.system_user_id <> pp.system_user_id
      AND opr.name = ?
  )
ORDER BY p.project_id`, systemUserID, model.ProjectRoleLead, model.ProjectRoleLead).Scan(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check project leads: %w", err)
	}
	return projects, nil
}
