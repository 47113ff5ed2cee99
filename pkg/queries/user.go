package queries

// InsertSystemUser registers a user. The identity source is looked up by
// name, and the statement returns no row when it is not an active code.
// Otherwise it returns system_user_id.
func InsertSystemUser(identifier, identitySource, guid, email, displayName string, userID int) (*Statement, error) {
	switch {
	case identifier == "":
		return nil, missing("user identifier")
	case identitySource == "":
		return nil, missing("identity source")
	}
	return &Statement{
		SQL: `INSERT INTO system_user (
  user_identity_source_id, user_identifier, user_guid, email, display_name, record_effective_date, create_user
)
SELECT uis.user_identity_source_id, ?, ?, ?, ?, now(), ?
FROM user_identity_source uis
WHERE uis.name = ?
  AND uis.record_end_date IS NULL
RETURNING system_user_id`,
		Args: []interface{}{identifier, nullable(guid), nullable(email), nullable(displayName), nullableInt(userID), identitySource},
	}, nil
}

// ActivateSystemUser clears record_end_date and records the guid when the
// user has none yet.
func ActivateSystemUser(systemUserID int, guid string) (*Statement, error) {
	if systemUserID == 0 {
		return nil, missing("system user id")
	}
	return &Statement{
		SQL: `UPDATE system_user
SET record_end_date = NULL,
  user_guid = COALESCE(user_guid, ?),
  update_date = now(),
  revision_count = revision_count + 1
WHERE system_user_id = ?`,
		Args: []interface{}{nullable(guid), systemUserID},
	}, nil
}

func DeactivateSystemUser(systemUserID, userID int) (*Statement, error) {
	if systemUserID == 0 {
		return nil, missing("system user id")
	}
	return &Statement{
		SQL: `UPDATE system_user
SET record_end_date = now(),
  update_date = now(),
  update_user = ?,
  revision_count = revision_count + 1
WHERE system_user_id = ?
  AND record_end_date IS NULL`,
		Args: []interface{}{nullableInt(userID), systemUserID},
	}, nil
}

// AddSystemRoles grants roles, skipping any already held.
func AddSystemRoles(systemUserID int, roleIDs []int, userID int) (*Statement, error) {
	switch {
	case systemUserID == 0:
		return nil, missing("system user id")
	case len(roleIDs) == 0:
		return nil, missing("system role ids")
	}
	args := make([]interface{}, 0, len(roleIDs)*3)
	for _, id := range roleIDs {
		args = append(args, systemUserID, id, nullableInt(userID))
	}
	return &Statement{
		SQL: `INSERT INTO system_user_role (system_user_id, system_role_id, create_user)
VALUES ` + valuesList("(?, ?, ?)", len(roleIDs)) + `
ON CONFLICT (system_user_id, system_role_id) DO NOTHING`,
		Args: args,
	}, nil
}

func RemoveSystemRole(systemUserID, roleID int) (*Statement, error) {
	switch {
	case systemUserID == 0:
		return nil, missing("system user id")
	case roleID == 0:
		return nil, missing("system role id")
	}
	return &Statement{
		SQL: `DELETE FROM system_user_role
WHERE system_user_id = ?
  AND system_role_id = ?`,
		Args: []interface{}{systemUserID, roleID},
	}, nil
}

func RemoveAllSystemRoles(systemUserID int) (*Statement, error) {
	if systemUserID == 0 {
		return nil, missing("system user id")
	}
	return &Statement{
		SQL:  `DELETE FROM system_user_role WHERE system_user_id = ?`,
		Args: []interface{}{systemUserID},
	}, nil
}
