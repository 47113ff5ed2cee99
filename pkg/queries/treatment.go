package queries

import "github.com/bcgov/restoration-tracker/pkg/model"

// UpsertTreatmentUnit inserts or replaces a treatment unit keyed by
// (project_id, unit_id). The statement returns treatment_unit_id.
func UpsertTreatmentUnit(projectID int, u model.TreatmentUnit, userID int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case u.UnitID == "":
		return nil, missing("treatment unit id")
	case len(u.GeoJSON) == 0:
		return nil, missing("treatment unit geometry")
	}
	geometry := string(u.GeoJSON)
	return &Statement{
		SQL: `INSERT INTO treatment_unit (
  project_id, unit_id, width, length, area, comments, geojson, geography, create_user
) VALUES (?, ?, ?, ?, ?, ?, ?, ` + geographyExpr + `, ?)
ON CONFLICT (project_id, unit_id) DO UPDATE SET
  width = EXCLUDED.width,
  length = EXCLUDED.length,
  area = EXCLUDED.area,
  comments = EXCLUDED.comments,
  geojson = EXCLUDED.geojson,
  geography = EXCLUDED.geography,
  update_date = now(),
  update_user = EXCLUDED.create_user
RETURNING treatment_unit_id`,
		Args: []interface{}{
			projectID, u.UnitID, u.Width, u.Length, u.Area, nullable(u.Comments),
			geometry, geometry, nullableInt(userID),
		},
	}, nil
}

// InsertTreatment records the treatment year of a unit. The statement
// returns treatment_id whether or not the year already existed.
func InsertTreatment(treatmentUnitID, year, userID int) (*Statement, error) {
	switch {
	case treatmentUnitID == 0:
		return nil, missing("treatment unit id")
	case year == 0:
		return nil, missing("treatment year")
	}
	return &Statement{
		SQL: `INSERT INTO treatment (treatment_unit_id, year, create_user)
VALUES (?, ?, ?)
ON CONFLICT (treatment_unit_id, year) DO UPDATE SET year = EXCLUDED.year
RETURNING treatment_id`,
		Args: []interface{}{treatmentUnitID, year, nullableInt(userID)},
	}, nil
}

func InsertTreatmentTypes(treatmentID int, typeIDs []int) (*Statement, error) {
	switch {
	case treatmentID == 0:
		return nil, missing("treatment id")
	case len(typeIDs) == 0:
		return nil, missing("treatment types")
	}
	args := make([]interface{}, 0, len(typeIDs)*2)
	for _, id := range typeIDs {
		args = append(args, treatmentID, id)
	}
	return &Statement{
		SQL: `INSERT INTO treatment_treatment_type (treatment_id, treatment_type_id)
VALUES ` + valuesList("(?, ?)", len(typeIDs)) + `
ON CONFLICT DO NOTHING`,
		Args: args,
	}, nil
}

func DeleteTreatmentsByYear(projectID, year int) (*Statement, error) {
	switch {
	case projectID == 0:
		return nil, missing("project id")
	case year == 0:
		return nil, missing("treatment year")
	}
	return &Statement{
		SQL: `DELETE FROM treatment t
USING treatment_unit tu
WHERE t.treatment_unit_id = tu.treatment_unit_id
  AND tu.project_id = ?
  AND t.year = ?`,
		Args: []interface{}{projectID, year},
	}, nil
}

// DeleteOrphanedTreatmentUnits removes the units of a project that have no
// treatments left.
func DeleteOrphanedTreatmentUnits(projectID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	return &Statement{
		SQL: `DELETE FROM treatment_unit tu
WHERE tu.project_id = ?
  AND NOT EXISTS (SELECT 1 FROM treatment t WHERE t.treatment_unit_id = tu.treatment_unit_id)`,
		Args: []interface{}{projectID},
	}, nil
}

// ListTreatments lists a project's treatments, optionally for some years.
func ListTreatments(projectID int, years []int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	where := &whereBuilder{}
	where.add("tu.project_id = ?", projectID)
	if len(years) > 0 {
		where.add("t.year IN ?", years)
	}
	return &Statement{
		SQL: `SELECT
  tu.unit_id, tu.width, tu.length, tu.area, tu.comments, tu.geojson, t.year,
  COALESCE(string_agg(tt.name, '; ' ORDER BY tt.name), '') AS types
FROM treatment_unit tu
JOIN treatment t ON t.treatment_unit_id = tu.treatment_unit_id
LEFT JOIN treatment_treatment_type ttt ON ttt.treatment_id = t.treatment_id
LEFT JOIN treatment_type tt ON tt.treatment_type_id = ttt.treatment_type_id
` + where.String() + `
GROUP BY tu.treatment_unit_id, t.treatment_id
ORDER BY t.year, tu.unit_id`,
		Args: where.args,
	}, nil
}
