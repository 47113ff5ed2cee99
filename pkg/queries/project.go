package queries

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/spatial"
)

// locationArgs returns the jsonb document and geometry collection for a
// location section. Both are empty when there is no boundary.
func locationArgs(loc *model.LocationSection) (string, string, error) {
	if loc == nil || loc.Geometry == nil || len(loc.Geometry.Features) == 0 {
		return "", "", nil
	}
	doc, err := json.Marshal(loc.Geometry)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode boundary: %w", err)
	}
	collection, err := spatial.GeometryCollection(loc.Geometry)
	if err != nil {
		return "", "", err
	}
	return string(doc), collection, nil
}

// InsertProject inserts the project row. The statement returns project_id.
func InsertProject(p model.ProjectSection, loc model.LocationSection, userID int) (*Statement, error) {
	switch {
	case p.Name == "":
		return nil, missing("project name")
	case p.Objectives == "":
		return nil, missing("objectives")
	case p.StartDate == "":
		return nil, missing("start date")
	}

	doc, collection, err := locationArgs(&loc)
	if err != nil {
		return nil, err
	}

	geography := "NULL"
	args := []interface{}{p.Name, p.Objectives, p.StartDate, nullable(p.EndDate), loc.Priority, nullable(doc)}
	if collection != "" {
		geography = geographyExpr
		args = append(args, collection)
	}
	args = append(args, nullableInt(userID))

	return &Statement{
		SQL: `INSERT INTO project (
  name, objectives, start_date, end_date, priority, geojson, geography, create_user
) VALUES (
  ?, ?, ?, ?, ?, ?, ` + geography + `, ?
)
RETURNING project_id`,
		Args: args,
	}, nil
}

// UpdateProject bumps the project revision and replaces the project and
// location fields that are present. It matches no row when revisionCount is
// stale.
func UpdateProject(projectID, revisionCount int, p *model.ProjectSection, loc *model.LocationSection, userID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}

	sets := []string{"update_date = now()", "update_user = ?", "revision_count = revision_count + 1"}
	args := []interface{}{nullableInt(userID)}

	if p != nil {
		if p.Name == "" || p.Objectives == "" || p.StartDate == "" {
			return nil, missing("project name, objectives and start date")
		}
		sets = append(sets, "name = ?", "objectives = ?", "start_date = ?", "end_date = ?")
		args = append(args, p.Name, p.Objectives, p.StartDate, nullable(p.EndDate))
	}

	if loc != nil {
		doc, collection, err := locationArgs(loc)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "priority = ?", "geojson = ?")
		args = append(args, loc.Priority, nullable(doc))
		if collection != "" {
			sets = append(sets, "geography = "+geographyExpr)
			args = append(args, collection)
		} else {
			sets = append(sets, "geography = NULL")
		}
	}

	args = append(args, projectID, revisionCount)
	return &Statement{
		SQL: `UPDATE project
SET ` + strings.Join(sets, ",\n  ") + `
WHERE project_id = ?
  AND revision_count = ?`,
		Args: args,
	}, nil
}

// DeleteProject deletes a project; child rows cascade.
func DeleteProject(projectID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	return &Statement{
		SQL:  `DELETE FROM project WHERE project_id = ?`,
		Args: []interface{}{projectID},
	}, nil
}

// PublishProject sets or clears the publish timestamp. Publishing an already
// published project keeps its original timestamp.
func PublishProject(projectID int, publish bool, userID int) (*Statement, error) {
	if projectID == 0 {
		return nil, missing("project id")
	}
	value := "NULL"
	if publish {
		value = "COALESCE(publish_timestamp, now())"
	}
	return &Statement{
		SQL: `UPDATE project
SET publish_timestamp = ` + value + `,
  update_date = now(),
  update_user = ?,
  revision_count = revision_count + 1
WHERE project_id = ?
RETURNING project_id`,
		Args: []interface{}{nullableInt(userID), projectID},
	}, nil
}
