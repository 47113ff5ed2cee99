package model

// System roles
const (
	SystemRoleSystemAdmin    = "System Administrator"
	SystemRoleProjectCreator = "Project Creator"
	SystemRoleDataAdmin      = "Data Administrator"
)

// Project roles
const (
	ProjectRoleLead   = "Project Lead"
	ProjectRoleEditor = "Project Editor"
	ProjectRoleViewer = "Project Viewer"
)

// ProjectRoles lists every project role, most privileged first.
var ProjectRoles = []string{ProjectRoleLead, ProjectRoleEditor, ProjectRoleViewer}

// Code is a row of any code table.
type Code struct {
	ID   int    `json:"id" gorm:"column:id"`
	Name string `json:"name" gorm:"column:name"`
}

// SystemRole is a row of system_role
type SystemRole struct {
	ID          int     `json:"id" gorm:"column:system_role_id;primaryKey"`
	Name        string  `json:"name" gorm:"column:name"`
	Description *string `json:"description" gorm:"column:description"`
}

func (SystemRole) TableName() string {
	return "system_role"
}
