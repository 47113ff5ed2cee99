package model

import (
	"time"

	"github.com/lib/pq"
)

// Identity sources
const (
	IdentitySourceIDIR          = "IDIR"
	IdentitySourceBCeIDBasic    = "BCEIDBASIC"
	IdentitySourceBCeIDBusiness = "BCEIDBUSINESS"
	IdentitySourceDatabase      = "DATABASE"
	IdentitySourceSystem        = "SYSTEM"
)

// SystemUser is a registered user together with its active system roles.
type SystemUser struct {
	ID             int            `json:"id" gorm:"column:system_user_id"`
	Identifier     string         `json:"user_identifier" gorm:"column:user_identifier"`
	IdentitySource string         `json:"identity_source" gorm:"column:identity_source"`
	GUID           *string        `json:"user_guid" gorm:"column:user_guid"`
	Email          *string        `json:"email" gorm:"column:email"`
	DisplayName    *string        `json:"display_name" gorm:"column:display_name"`
	RecordEndDate  *time.Time     `json:"record_end_date" gorm:"column:record_end_date"`
	RoleIDs        pq.Int64Array  `json:"role_ids" gorm:"column:role_ids;type:integer[]"`
	RoleNames      pq.StringArray `json:"role_names" gorm:"column:role_names;type:text[]"`
}

// Active reports whether the user has not been end-dated.
func (u *SystemUser) Active() bool {
	return u != nil && u.RecordEndDate == nil
}

// HasRole reports whether the user holds any of the named system roles.
func (u *SystemUser) HasRole(names ...string) bool {
	if u == nil {
		return false
	}
	for _, held := range u.RoleNames {
		for _, name := range names {
			if held == name {
				return true
			}
		}
	}
	return false
}

// HasRoleID reports whether the user holds the system role with the given id.
func (u *SystemUser) HasRoleID(id int) bool {
	if u == nil {
		return false
	}
	for _, held := range u.RoleIDs {
		if int(held) == id {
			return true
		}
	}
	return false
}

// NewUser is the body of POST /api/user
type NewUser struct {
	IdentitySource string `json:"identitySource"`
	UserIdentifier string `json:"userIdentifier"`
	UserGUID       string `json:"userGuid"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	RoleID         int    `json:"roleId"`
}

// SystemRolesRequest is the body of POST /api/user/{userId}/system-roles/create
type SystemRolesRequest struct {
	Roles []int `json:"roles"`
}
