package queries

// InsertPermit requires the project id, permit number and permit type.
func InsertPermit(projectID int, number, permitType string, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case number == "":
		return nil, missing("permit number")
	case permitType == "":
		return nil, missing("permit type")
	}
	return &Statement{
		SQL: `INSERT INTO permit (project_id, number, type, create_user)
VALUES (?, ?, ?, ?)`,
		Args: []interface{}{projectID, number, permitType, nullableInt(userID)},
	}, nil
}

func DeletePermits(projectID int) (*Statement, error) {
	return deleteByProject("permit", projectID)
}
