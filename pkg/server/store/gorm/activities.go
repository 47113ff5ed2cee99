package gorm

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure ActivitiesStore implements store.ActivitiesStore
var _ store.ActivitiesStore = (*ActivitiesStore)(nil)

// ActivitiesStore implements store.ActivitiesStore using GORM
type ActivitiesStore struct {
	db *gorm.DB
}

// NewActivitiesStore creates a new ActivitiesStore
func NewActivitiesStore(db *gorm.DB) *ActivitiesStore {
	return &ActivitiesStore{db: db}
}

func (s *ActivitiesStore) CreateAccessRequest(ctx context.Context, reportedSystemUserID int, req model.AccessRequest) (*model.AccessRequestResult, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode access request: %w", err)
	}

	var result model.AccessRequestResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := countPending(tx, req.UserGUID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return store.ErrConflict
		}

		stmt, err := queries.InsertAdministrativeActivity(reportedSystemUserID, req.UserGUID, data)
		if err != nil {
			return err
		}
		if _, err := scan(tx, stmt, &result); err != nil {
			// A concurrent request got past the count first.
			if isUniqueViolation(err) {
				return store.ErrConflict
			}
			return fmt.Errorf("failed to insert administrative activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ActivitiesStore) HasPendingAccessRequest(ctx context.Context, userGUID string) (bool, error) {
	if userGUID == "" {
		return false, nil
	}
	n, err := countPending(s.db.WithContext(ctx), userGUID)
	return n > 0, err
}

func (s *ActivitiesStore) ListActivities(ctx context.Context, types, statuses []string) ([]model.AdministrativeActivity, error) {
	activities := []model.AdministrativeActivity{}
	stmt := queries.ListAdministrativeActivities(types, statuses)
	if _, err := scan(s.db.WithContext(ctx), stmt, &activities); err != nil {
		return nil, fmt.Errorf("failed to list administrative activities: %w", err)
	}
	return activities, nil
}

func (s *ActivitiesStore) GetActivity(ctx context.Context, activityID int) (*model.AdministrativeActivity, error) {
	return getActivity(s.db.WithContext(ctx), activityID)
}

func (s *ActivitiesStore) UpdateActivityStatus(ctx context.Context, activityID int, status string, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := getActivity(tx, activityID)
		if err != nil {
			return err
		}
		return transition(tx, activityID, activity.StatusName, status, actorID)
	})
}

func (s *ActivitiesStore) ApproveAccessRequest(ctx context.Context, activityID int, req model.ApproveAccessRequest, actorID int) (*model.SystemUser, error) {
	var systemUserID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activity, err := getActivity(tx, activityID)
		if err != nil {
			return err
		}
		if !model.CanTransition(activity.StatusName, model.ActivityStatusActioned) {
			return model.ErrInvalidTransition
		}

		// The request form carries the requester's contact details.
		var form model.AccessRequest
		if err := json.Unmarshal(activity.Data, &form); err != nil {
			return fmt.Errorf("failed to decode administrative activity %d: %w", activityID, err)
		}

		id, err := ensureSystemUser(tx, req.UserIdentifier, req.IdentitySource, req.UserGUID, form.Email, form.Name, actorID)
		if err != nil {
			return err
		}
		systemUserID = id

		if err := addSystemRoles(tx, id, req.RoleIDs, actorID); err != nil {
			return err
		}
		return transition(tx, activityID, activity.StatusName, model.ActivityStatusActioned, actorID)
	})
	if err != nil {
		return nil, err
	}

	u, err := findSystemUser(s.db.WithContext(ctx), "su.system_user_id = ?", systemUserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func getActivity(db *gorm.DB, activityID int) (*model.AdministrativeActivity, error) {
	stmt, err := queries.GetAdministrativeActivity(activityID)
	if err != nil {
		return nil, err
	}
	var activity model.AdministrativeActivity
	n, err := scan(db, stmt, &activity)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch administrative activity: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return &activity, nil
}

// transition runs the guarded status update. Zero rows means another
// request moved the activity first.
func transition(tx *gorm.DB, activityID int, from, to string, actorID int) error {
	stmt, err := queries.UpdateAdministrativeActivityStatus(activityID, from, to, actorID)
	if err != nil {
		return err
	}
	n, err := exec(tx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update administrative activity: %w", err)
	}
	if n == 0 {
		return model.ErrInvalidTransition
	}
	return nil
}

func countPending(db *gorm.DB, userGUID string) (int, error) {
	stmt, err := queries.CountPendingAccessRequests(userGUID)
	if err != nil {
		return 0, err
	}
	var n int
	if _, err := scan(db, stmt, &n); err != nil {
		return 0, fmt.Errorf("failed to count pending access requests: %w", err)
	}
	return n, nil
}
