package model

import (
	"encoding/json"
	"errors"
	"time"
)

// Administrative activity types and statuses
const (
	ActivityTypeSystemAccess = "System Access"

	ActivityStatusPending  = "Pending"
	ActivityStatusActioned = "Actioned"
	ActivityStatusRejected = "Rejected"
)

// CanTransition reports whether an administrative activity may move from
// one status to another. Only Pending activities move, and only to a
// terminal status.
func CanTransition(from, to string) bool {
	if from != ActivityStatusPending {
		return false
	}
	return to == ActivityStatusActioned || to == ActivityStatusRejected
}

// IsActivityStatus reports whether s names a known status.
func IsActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusActioned, ActivityStatusRejected:
		return true
	}
	return false
}

// AccessRequest is the system access request form stored in
// administrative_activity.data
type AccessRequest struct {
	Name            string   `json:"name"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	IdentitySource  string   `json:"identitySource"`
	UserGUID        string   `json:"userGuid"`
	Role            int      `json:"role"`
	Reason          string   `json:"reason"`
	RegionalOffices []string `json:"regionalOffices,omitempty"`
}

// AdministrativeActivity is a row of administrative_activity joined with its
// type and status names.
type AdministrativeActivity struct {
	ID          int             `json:"id" gorm:"column:id"`
	TypeName    string          `json:"type_name" gorm:"column:type_name"`
	StatusName  string          `json:"status_name" gorm:"column:status_name"`
	Description *string         `json:"description" gorm:"column:description"`
	Notes       *string         `json:"notes" gorm:"column:notes"`
	Data        json.RawMessage `json:"data" gorm:"column:data"`
	CreateDate  time.Time       `json:"create_date" gorm:"column:create_date"`
}

// AccessRequestResult is returned by POST /api/administrative-activity
type AccessRequestResult struct {
	ID         int       `json:"id"`
	CreateDate time.Time `json:"date"`
}

// ActivityStatusUpdate is the body of PUT /api/administrative-activity/{id}
type ActivityStatusUpdate struct {
	Status string `json:"status"`
}

// ApproveAccessRequest is the body of
// PUT /api/administrative-activity/system-access/{id}/approve
type ApproveAccessRequest struct {
	UserGUID       string `json:"userGuid"`
	UserIdentifier string `json:"userIdentifier"`
	IdentitySource string `json:"identitySource"`
	RoleIDs        []int  `json:"roleIds"`
}

// ErrInvalidTransition is returned for a status change CanTransition refuses
var ErrInvalidTransition = errors.New("invalid administrative activity status transition")
