package model

// Participant is a user's role on a project.
type Participant struct {
	ID             int    `json:"project_participation_id" gorm:"column:project_participation_id"`
	ProjectID      int    `json:"project_id" gorm:"column:project_id"`
	SystemUserID   int    `json:"system_user_id" gorm:"column:system_user_id"`
	RoleID         int    `json:"project_role_id" gorm:"column:project_role_id"`
	RoleName       string `json:"project_role_name" gorm:"column:project_role_name"`
	UserIdentifier string `json:"user_identifier" gorm:"column:user_identifier"`
	IdentitySource string `json:"user_identity_source_name" gorm:"column:identity_source"`
}

// NewParticipant is one entry of POST /api/project/{projectId}/participants/create
type NewParticipant struct {
	UserIdentifier string `json:"userIdentifier"`
	IdentitySource string `json:"identitySource"`
	UserGUID       string `json:"userGuid,omitempty"`
	RoleID         int    `json:"roleId"`
}

type NewParticipantsRequest struct {
	Participants []NewParticipant `json:"participants"`
}

// ParticipantRoleUpdate is the body of the participant update endpoint
type ParticipantRoleUpdate struct {
	RoleID int `json:"roleId"`
}

// SoleLeadProject is a project on which a user is the only Project Lead.
type SoleLeadProject struct {
	ProjectID int    `json:"project_id" gorm:"column:project_id"`
	Name      string `json:"name" gorm:"column:name"`
}
