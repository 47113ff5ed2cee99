package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// ActivitiesStore manages administrative activities
type ActivitiesStore interface {
	// CreateAccessRequest records a Pending system access request. Returns
	// ErrConflict when the requester already has a pending request.
	CreateAccessRequest(ctx context.Context, reportedSystemUserID int, req model.AccessRequest) (*model.AccessRequestResult, error)

	HasPendingAccessRequest(ctx context.Context, userGUID string) (bool, error)

	ListActivities(ctx context.Context, types, statuses []string) ([]model.AdministrativeActivity, error)

	// GetActivity returns ErrNotFound for unknown ids.
	GetActivity(ctx context.Context, activityID int) (*model.AdministrativeActivity, error)

	// UpdateActivityStatus moves a Pending activity to a terminal status.
	// Returns model.ErrInvalidTransition when the activity is not Pending.
	UpdateActivityStatus(ctx context.Context, activityID int, status string, actorID int) error

	// ApproveAccessRequest ensures the user exists and is active, grants the
	// roles and marks the activity Actioned, all in one transaction.
	ApproveAccessRequest(ctx context.Context, activityID int, req model.ApproveAccessRequest, actorID int) (*model.SystemUser, error)
}
