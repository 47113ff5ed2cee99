package queries

// InsertDraft saves a new draft. The statement returns id and date.
func InsertDraft(systemUserID int, name string, data []byte) (*Statement, error) {
	switch {
	case systemUserID == 0:
		return nil, missing("system user id")
	case name == "":
		return nil, missing("draft name")
	case len(data) == 0:
		return nil, missing("draft data")
	}
	return &Statement{
		SQL: `INSERT INTO webform_draft (system_user_id, name, data)
VALUES (?, ?, ?)
RETURNING webform_draft_id AS id, create_date AS date`,
		Args: []interface{}{systemUserID, name, string(data)},
	}, nil
}

// UpdateDraft replaces a draft owned by the user. The statement returns id
// and date, and matches no row for someone else's draft.
func UpdateDraft(systemUserID, draftID int, name string, data []byte) (*Statement, error) {
	switch {
	case systemUserID == 0:
		return nil, missing("system user id")
	case draftID == 0:
		return nil, missing("draft id")
	case name == "":
		return nil, missing("draft name")
	case len(data) == 0:
		return nil, missing("draft data")
	}
	return &Statement{
		SQL: `UPDATE webform_draft
SET name = ?, data = ?, update_date = now()
WHERE webform_draft_id = ?
  AND system_user_id = ?
RETURNING webform_draft_id AS id, update_date AS date`,
		Args: []interface{}{name, string(data), draftID, systemUserID},
	}, nil
}

func DeleteDraft(systemUserID, draftID int) (*Statement, error) {
	switch {
	case systemUserID == 0:
		return nil, missing("system user id")
	case draftID == 0:
		return nil, missing("draft id")
	}
	return &Statement{
		SQL: `DELETE FROM webform_draft
WHERE webform_draft_id = ?
  AND system_user_id = ?`,
		Args: []interface{}{draftID, systemUserID},
	}, nil
}
