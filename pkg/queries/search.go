package queries

import (
	"strings"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// Scope restricts which projects a search can see.
type Scope struct {
	// SystemUserID limits results to projects the user participates in
	// unless Unrestricted is set.
	SystemUserID int
	Unrestricted bool
	// PublishedOnly limits results to published projects and public contacts.
	PublishedOnly bool
}

func (s Scope) apply(where *whereBuilder) error {
	if s.PublishedOnly {
		where.add("p.publish_timestamp IS NOT NULL")
	}
	if s.Unrestricted || s.PublishedOnly {
		return nil
	}
	if s.SystemUserID == 0 {
		return missing("system user id")
	}
	where.add("p.project_id IN (SELECT pp.project_id FROM project_participation pp WHERE pp.system_user_id = ?)", s.SystemUserID)
	return nil
}

// likeEscaper escapes LIKE metacharacters using the default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ProjectList builds the filtered project list query.
func ProjectList(filter model.ProjectFilter, scope Scope, limit int) (*Statement, error) {
	if limit <= 0 {
		return nil, missing("limit")
	}

	where := &whereBuilder{}
	if err := scope.apply(where); err != nil {
		return nil, err
	}

	if filter.Keyword != "" {
		kw := containsPattern(filter.Keyword)
		where.add(`(p.name ILIKE ? OR p.objectives ILIKE ?
    OR EXISTS (SELECT 1 FROM project_contact kc WHERE kc.project_id = p.project_id AND kc.agency ILIKE ?))`, kw, kw, kw)
	}
	if filter.ContactAgency != "" {
		where.add("EXISTS (SELECT 1 FROM project_contact c WHERE c.project_id = p.project_id AND c.agency ILIKE ?)",
			containsPattern(filter.ContactAgency))
	}
	if filter.FundingAgency != 0 {
		where.add(`EXISTS (
    SELECT 1 FROM project_funding_source pfs
    JOIN investment_action_category iac ON iac.investment_action_category_id = pfs.investment_action_category_id
    WHERE pfs.project_id = p.project_id AND iac.funding_source_id = ?)`, filter.FundingAgency)
	}
	if filter.PermitNumber != "" {
		where.add("EXISTS (SELECT 1 FROM permit pm2 WHERE pm2.project_id = p.project_id AND pm2.number = ?)", filter.PermitNumber)
	}
	if filter.StartDate != "" {
		where.add("p.start_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		where.add("p.end_date <= ?", filter.EndDate)
	}
	if len(filter.Species) > 0 {
		where.add("EXISTS (SELECT 1 FROM project_species ps WHERE ps.project_id = p.project_id AND ps.wldtaxonomic_units_id IN ?)", filter.Species)
	}
	if filter.Region != 0 {
		where.add("EXISTS (SELECT 1 FROM project_region pr WHERE pr.project_id = p.project_id AND pr.nrm_region_id = ?)", filter.Region)
	}

	contactJoin := "LEFT JOIN project_contact pc ON pc.project_id = p.project_id"
	if scope.PublishedOnly {
		contactJoin += " AND pc.is_public"
	}

	return &Statement{
		SQL: `SELECT
  p.project_id AS id,
  p.name,
  to_char(p.start_date, 'YYYY-MM-DD') AS start_date,
  to_char(p.end_date, 'YYYY-MM-DD') AS end_date,
  p.publish_timestamp AS publish_date,
  COALESCE(string_agg(DISTINCT pc.agency, ', '), '') AS agencies,
  COALESCE(string_agg(DISTINCT pm.number, ', '), '') AS permit_numbers
FROM project p
` + contactJoin + `
LEFT JOIN permit pm ON pm.project_id = p.project_id
` + where.String() + `
GROUP BY p.project_id
ORDER BY p.project_id DESC
LIMIT ?`,
		Args: append(where.args, limit),
	}, nil
}

// SpatialSearch returns project boundaries, optionally intersecting bbox.
func SpatialSearch(scope Scope, bbox *model.BoundingBox, limit int) (*Statement, error) {
	if limit <= 0 {
		return nil, missing("limit")
	}

	where := &whereBuilder{}
	where.add("p.geography IS NOT NULL")
	if err := scope.apply(where); err != nil {
		return nil, err
	}
	if bbox != nil {
		where.add("public.ST_Intersects(p.geography, public.ST_MakeEnvelope(?, ?, ?, ?, 4326)::geography)",
			bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat)
	}

	return &Statement{
		SQL: `SELECT
  p.project_id AS id,
  p.name,
  public.ST_AsGeoJSON(p.geography) AS geometry
FROM project p
` + where.String() + `
ORDER BY p.project_id DESC
LIMIT ?`,
		Args: append(where.args, limit),
	}, nil
}
