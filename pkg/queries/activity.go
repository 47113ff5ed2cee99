package queries

import (
	"github.com/bcgov/restoration-tracker/pkg/model"
)

const activitySelect = `SELECT
  aa.administrative_activity_id AS id,
  aat.name AS type_name,
  aast.name AS status_name,
  aa.description,
  aa.notes,
  aa.data,
  aa.create_date
FROM administrative_activity aa
JOIN administrative_activity_type aat
  ON aat.administrative_activity_type_id = aa.administrative_activity_type_id
JOIN administrative_activity_status_type aast
  ON aast.administrative_activity_status_type_id = aa.administrative_activity_status_type_id`

// InsertAdministrativeActivity records a Pending system access request. The
// requester guid must be inside data as userGuid; it is required here because
// the one-pending-request index keys on it. The statement returns id and
// create_date.
func InsertAdministrativeActivity(reportedSystemUserID int, userGUID string, data []byte) (*Statement, error) {
	switch {
	case userGUID == "":
		return nil, missing("user guid")
	case len(data) == 0:
		return nil, missing("activity data")
	}
	return &Statement{
		SQL: `INSERT INTO administrative_activity (
  reported_system_user_id,
  administrative_activity_type_id,
  administrative_activity_status_type_id,
  data
) VALUES (
  ?,
  (SELECT administrative_activity_type_id FROM administrative_activity_type WHERE name = ?),
  (SELECT administrative_activity_status_type_id FROM administrative_activity_status_type WHERE name = ?),
  ?
)
RETURNING administrative_activity_id AS id, create_date`,
		Args: []interface{}{nullableInt(reportedSystemUserID), model.ActivityTypeSystemAccess, model.ActivityStatusPending, string(data)},
	}, nil
}

// UpdateAdministrativeActivityStatus moves an activity from one status to
// another in a single statement. It matches no row unless the activity is
// still in the from status.
func UpdateAdministrativeActivityStatus(activityID int, from, to string, userID int) (*Statement, error) {
	switch {
	case activityID == 0:
		return nil, missing("activity id")
	case from == "", to == "":
		return nil, missing("activity status")
	}
	if !model.CanTransition(from, to) {
		return nil, model.ErrInvalidTransition
	}
	return &Statement{
		SQL: `UPDATE administrative_activity
SET administrative_activity_status_type_id = (
    SELECT administrative_activity_status_type_id FROM administrative_activity_status_type WHERE name = ?
  ),
  update_date = now(),
  update_user = ?,
  revision_count = revision_count + 1
WHERE administrative_activity_id = ?
  AND administrative_activity_status_type_id = (
    SELECT administrative_activity_status_type_id FROM administrative_activity_status_type WHERE name = ?
  )`,
		Args: []interface{}{to, nullableInt(userID), activityID, from},
	}, nil
}

// ListAdministrativeActivities lists activities, optionally filtered by type
// and status names.
func ListAdministrativeActivities(types, statuses []string) *Statement {
	where := &whereBuilder{}
	if len(types) > 0 {
		where.add("aat.name IN ?", types)
	}
	if len(statuses) > 0 {
		where.add("aast.name IN ?", statuses)
	}
	return &Statement{
		SQL:  activitySelect + "\n" + where.String() + "\nORDER BY aa.create_date DESC",
		Args: where.args,
	}
}

// GetAdministrativeActivity fetches one activity with its status name.
func GetAdministrativeActivity(activityID int) (*Statement, error) {
	if activityID == 0 {
		return nil, missing("activity id")
	}
	return &Statement{
		SQL:  activitySelect + "\nWHERE aa.administrative_activity_id = ?",
		Args: []interface{}{activityID},
	}, nil
}

// CountPendingAccessRequests counts the pending requests made by a user guid.
func CountPendingAccessRequests(userGUID string) (*Statement, error) {
	if userGUID == "" {
		return nil, missing("user guid")
	}
	return &Statement{
		SQL: `SELECT count(*)
FROM administrative_activity aa
JOIN administrative_activity_status_type aast
  ON aast.administrative_activity_status_type_id = aa.administrative_activity_status_type_id
WHERE lower(aa.data ->> 'userGuid') = lower(?)
  AND aast.name = ?`,
		Args: []interface{}{userGUID, model.ActivityStatusPending},
	}, nil
}
