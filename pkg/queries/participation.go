package queries

import "github.com/bcgov/restoration-tracker/pkg/model"

// InsertParticipation adds a user to a project. The statement returns
// project_participation_id.
func InsertParticipation(projectID, systemUserID, roleID, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case systemUserID == 0:
		return nil, missing("system user id")
	case roleID == 0:
		return nil, missing("project role id")
	}
	return &Statement{
		SQL: `INSERT INTO project_participation (project_id, system_user_id, project_role_id, create_user)
VALUES (?, ?, ?, ?)
RETURNING project_participation_id`,
		Args: []interface{}{projectID, systemUserID, roleID, nullableInt(userID)},
	}, nil
}

// InsertParticipationByRoleName adds a user to a project with a role looked
// up by name.
func InsertParticipationByRoleName(projectID, systemUserID int, roleName string, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case systemUserID == 0:
		return nil, missing("system user id")
	case roleName == "":
		return nil, missing("project role name")
	}
	return &Statement{
		SQL: `INSERT INTO project_participation (project_id, system_user_id, project_role_id, create_user)
SELECT ?, ?, project_role_id, ?
FROM project_role
WHERE name = ?
  AND record_end_date IS NULL
RETURNING project_participation_id`,
		Args: []interface{}{projectID, systemUserID, nullableInt(userID), roleName},
	}, nil
}

func UpdateParticipationRole(projectID, participationID, roleID, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case participationID == 0:
		return nil, missing("participation id")
	case roleID == 0:
		return nil, missing("project role id")
	}
	return &Statement{
		SQL: `UPDATE project_participation
SET project_role_id = ?, update_date = now(), update_user = ?
WHERE project_id = ?
  AND project_participation_id = ?`,
		Args: []interface{}{roleID, nullableInt(userID), projectID, participationID},
	}, nil
}

func DeleteParticipation(projectID, participationID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case participationID == 0:
		return nil, missing("participation id")
	}
	return &Statement{
		SQL: `DELETE FROM project_participation
WHERE project_id = ?
  AND project_participation_id = ?`,
		Args: []interface{}{projectID, participationID},
	}, nil
}

// DeleteUserParticipations removes a user from every project.
func DeleteUserParticipations(systemUserID int) (*Statement, error) {
	if systemUserID == 0 {
		return nil, missing("system user id")
	}
	return &Statement{
		SQL:  `DELETE FROM project_participation WHERE system_user_id = ?`,
		Args: []interface{}{systemUserID},
	}, nil
}

// CountProjectLeads counts the Project Leads of a project.
func CountProjectLeads(projectID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	return &Statement{
		SQL: `SELECT count(*)
FROM project_participation pp
JOIN project_role pr ON pr.project_role_id = pp.project_role_id
WHERE pp.project_id = ?
  AND pr.name = ?`,
		Args: []interface{}{projectID, model.ProjectRoleLead},
	}, nil
}
