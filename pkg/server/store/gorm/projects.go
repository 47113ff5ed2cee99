package gorm

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure ProjectsStore implements store.ProjectsStore
var _ store.ProjectsStore = (*ProjectsStore)(nil)

// ProjectsStore implements store.ProjectsStore using GORM
type ProjectsStore struct {
	db *gorm.DB
}

// NewProjectsStore creates a new ProjectsStore
func NewProjectsStore(db *gorm.DB) *ProjectsStore {
	return &ProjectsStore{db: db}
}

func (s *ProjectsStore) CreateProject(ctx context.Context, p model.PostProjectObject, creatorID int) (int, error) {
	var projectID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt, err := queries.InsertProject(p.Project, p.Location, creatorID)
		if err != nil {
			return err
		}
		if _, err := scan(tx, stmt, &projectID); err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}

		w := sectionWriter{tx: tx, projectID: projectID, userID: creatorID}
		w.contacts(p.Contact.Contacts)
		w.permits(p.Permit.Permits)
		w.funding(p.Funding.FundingSources)
		w.iucn(p.IUCN.ClassificationDetails)
		w.region(p.Location.Region)
		w.species(p.Species.FocalSpecies)
		w.partnerships(p.Partnership.StakeholderPartnerships)
		if w.err != nil {
			return w.err
		}

		stmt, err = queries.InsertParticipationByRoleName(projectID, creatorID, model.ProjectRoleLead, creatorID)
		if err != nil {
			return err
		}
		var participationID int
		n, err := scan(tx, stmt, &participationID)
		if err != nil {
			return fmt.Errorf("failed to add project lead: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to add project lead: role %q is not defined", model.ProjectRoleLead)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return projectID, nil
}

func (s *ProjectsStore) GetProject(ctx context.Context, projectID int) (*model.ProjectRecord, error) {
	return getProject(s.db.WithContext(ctx), projectID)
}

func (s *ProjectsStore) GetProjectView(ctx context.Context, projectID int, publicOnly bool) (*model.ProjectView, error) {
	db := s.db.WithContext(ctx)
	p, err := getProject(db, projectID)
	if err != nil {
		return nil, err
	}

	r := sectionReader{db: db, projectID: projectID}
	view := &model.ProjectView{
		ID:   p.ID,
		UUID: p.UUID,
		Project: model.ProjectDetails{
			ProjectSection: projectSection(p),
			PublishDate:    p.PublishTimestamp,
			RevisionCount:  p.RevisionCount,
		},
		Contact:     model.ContactSection{Contacts: r.contacts(publicOnly)},
		Permit:      model.PermitSection{Permits: r.permits()},
		Funding:     model.FundingSection{FundingSources: r.funding()},
		IUCN:        model.IUCNSection{ClassificationDetails: r.iucn()},
		Location:    r.location(p),
		Species:     model.SpeciesSection{FocalSpecies: r.species()},
		Partnership: model.PartnershipSection{StakeholderPartnerships: r.partnerships()},
	}
	if r.err != nil {
		return nil, r.err
	}
	return view, nil
}

func (s *ProjectsStore) GetProjectForUpdate(ctx context.Context, projectID int, entities []string) (*model.ProjectForUpdate, error) {
	db := s.db.WithContext(ctx)
	p, err := getProject(db, projectID)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		entities = model.ProjectEntities
	}

	r := sectionReader{db: db, projectID: projectID}
	out := &model.ProjectForUpdate{RevisionCount: p.RevisionCount}
	for _, entity := range entities {
		switch entity {
		case model.EntityProject:
			section := projectSection(p)
			out.Project = &section
		case model.EntityContact:
			out.Contact = &model.ContactSection{Contacts: r.contacts(false)}
		case model.EntityPermit:
			out.Permit = &model.PermitSection{Permits: r.permits()}
		case model.EntityFunding:
			out.Funding = &model.FundingSection{FundingSources: r.funding()}
		case model.EntityIUCN:
			out.IUCN = &model.IUCNSection{ClassificationDetails: r.iucn()}
		case model.EntityLocation:
			loc := r.location(p)
			out.Location = &loc
		case model.EntitySpecies:
			out.Species = &model.SpeciesSection{FocalSpecies: r.species()}
		case model.EntityPartnership:
			out.Partnership = &model.PartnershipSection{StakeholderPartnerships: r.partnerships()}
		default:
			return nil, fmt.Errorf("unknown project entity %q", entity)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return out, nil
}

func (s *ProjectsStore) UpdateProject(ctx context.Context, projectID int, p model.PutProjectObject, actorID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt, err := queries.UpdateProject(projectID, p.RevisionCount, p.Project, p.Location, actorID)
		if err != nil {
			return err
		}
		n, err := exec(tx, stmt)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if n == 0 {
			if _, err := getProject(tx, projectID); err != nil {
				return err
			}
			return store.ErrConflict
		}

		w := sectionWriter{tx: tx, projectID: projectID, userID: actorID}
		if p.Contact != nil {
			w.replace(queries.DeleteContacts)
			w.contacts(p.Contact.Contacts)
		}
		if p.Permit != nil {
			w.replace(queries.DeletePermits)
			w.permits(p.Permit.Permits)
		}
		if p.Funding != nil {
			w.replace(queries.DeleteFundingSources)
			w.funding(p.Funding.FundingSources)
		}
		if p.IUCN != nil {
			w.replace(queries.DeleteIUCNClassifications)
			w.iucn(p.IUCN.ClassificationDetails)
		}
		if p.Location != nil {
			w.replace(queries.DeleteRegions)
			w.region(p.Location.Region)
		}
		if p.Species != nil {
			w.replace(queries.DeleteSpecies)
			w.species(p.Species.FocalSpecies)
		}
		if p.Partnership != nil {
			w.replace(queries.DeleteStakeholderPartnerships)
			w.partnerships(p.Partnership.StakeholderPartnerships)
		}
		return w.err
	})
}

func (s *ProjectsStore) PublishProject(ctx context.Context, projectID int, publish bool, actorID int) error {
	stmt, err := queries.PublishProject(projectID, publish, actorID)
	if err != nil {
		return err
	}
	var id int
	n, err := scan(s.db.WithContext(ctx), stmt, &id)
	if err != nil {
		return fmt.Errorf("failed to publish project: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProjectsStore) DeleteProject(ctx context.Context, projectID int) error {
	stmt, err := queries.DeleteProject(projectID)
	if err != nil {
		return err
	}
	n, err := exec(s.db.WithContext(ctx), stmt)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProjectsStore) ListProjects(ctx context.Context, filter model.ProjectFilter, scope queries.Scope, limit int) ([]model.ProjectListItem, error) {
	stmt, err := queries.ProjectList(filter, scope, limit)
	if err != nil {
		return nil, err
	}
	projects := []model.ProjectListItem{}
	if _, err := scan(s.db.WithContext(ctx), stmt, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectsStore) SpatialSearch(ctx context.Context, scope queries.Scope, bbox *model.BoundingBox, limit int) ([]model.SearchResult, error) {
	stmt, err := queries.SpatialSearch(scope, bbox, limit)
	if err != nil {
		return nil, err
	}
	results := []model.SearchResult{}
	if _, err := scan(s.db.WithContext(ctx), stmt, &results); err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return results, nil
}

func getProject(db *gorm.DB, projectID int) (*model.ProjectRecord, error) {
	var p model.ProjectRecord
	res := db.Raw(`SELECT
  project_id,
  uuid,
  name,
  objectives,
  to_char(start_date, 'YYYY-MM-DD') AS start_date,
  to_char(end_date, 'YYYY-MM-DD') AS end_date,
  priority,
  geojson,
  publish_timestamp,
  create_date,
  revision_count
FROM project
WHERE project_id = ?`, projectID).Scan(&p)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func projectSection(p *model.ProjectRecord) model.ProjectSection {
	section := model.ProjectSection{
		Name:       p.Name,
		Objectives: p.Objectives,
		StartDate:  p.StartDate,
	}
	if p.EndDate != nil {
		section.EndDate = *p.EndDate
	}
	return section
}

// sectionWriter inserts child rows, keeping the first error.
type sectionWriter struct {
	tx        *gorm.DB
	projectID int
	userID    int
	err       error
}

func (w *sectionWriter) run(stmt *queries.Statement, err error) {
	if w.err != nil {
		return
	}
	if err != nil {
		w.err = err
		return
	}
	if _, err := exec(w.tx, stmt); err != nil {
		w.err = fmt.Errorf("failed to write project section: %w", err)
	}
}

func (w *sectionWriter) replace(del func(int) (*queries.Statement, error)) {
	w.run(del(w.projectID))
}

func (w *sectionWriter) contacts(contacts []model.Contact) {
	for _, c := range contacts {
		w.run(queries.InsertContact(w.projectID, c, w.userID))
	}
}

func (w *sectionWriter) permits(permits []model.Permit) {
	for _, p := range permits {
		w.run(queries.InsertPermit(w.projectID, p.Number, p.Type, w.userID))
	}
}

func (w *sectionWriter) funding(sources []model.FundingSource) {
	for _, f := range sources {
		w.run(queries.InsertFundingSource(w.projectID, f, w.userID))
	}
}

func (w *sectionWriter) iucn(details []model.IUCNClassification) {
	for _, c := range details {
		w.run(queries.InsertIUCNClassification(w.projectID, c.Subclassification2))
	}
}

func (w *sectionWriter) region(regionID int) {
	if regionID != 0 {
		w.run(queries.InsertRegion(w.projectID, regionID))
	}
}

func (w *sectionWriter) species(taxonIDs []int) {
	if len(taxonIDs) > 0 {
		w.run(queries.InsertSpecies(w.projectID, taxonIDs))
	}
}

func (w *sectionWriter) partnerships(names []string) {
	for _, name := range names {
		w.run(queries.InsertStakeholderPartnership(w.projectID, name))
	}
}

// sectionReader loads child rows, keeping the first error.
type sectionReader struct {
	db        *gorm.DB
	projectID int
	err       error
}

func (r *sectionReader) query(dest interface{}, sql string, args ...interface{}) {
	if r.err != nil {
		return
	}
	if err := r.db.Raw(sql, args...).Scan(dest).Error; err != nil {
		r.err = fmt.Errorf("failed to fetch project section: %w", err)
	}
}

func (r *sectionReader) contacts(publicOnly bool) []model.Contact {
	contacts := []model.Contact{}
	sql := `SELECT first_name, last_name, email_address, agency, is_public, is_primary
FROM project_contact
WHERE project_id = ?`
	if publicOnly {
		sql += "\n  AND is_public"
	}
	r.query(&contacts, sql+"\nORDER BY project_contact_id", r.projectID)
	return contacts
}

func (r *sectionReader) permits() []model.Permit {
	permits := []model.Permit{}
	r.query(&permits, `SELECT permit_id, number, type
FROM permit
WHERE project_id = ?
ORDER BY permit_id`, r.projectID)
	return permits
}

func (r *sectionReader) funding() []model.FundingSource {
	sources := []model.FundingSource{}
	r.query(&sources, `SELECT
  pfs.project_funding_source_id AS id,
  fs.funding_source_id AS agency_id,
  fs.name AS agency_name,
  iac.investment_action_category_id AS investment_action_category,
  iac.name AS investment_action_category_name,
  COALESCE(pfs.funding_source_project_id, '') AS agency_project_id,
  pfs.funding_amount,
  to_char(pfs.funding_start_date, 'YYYY-MM-DD') AS start_date,
  to_char(pfs.funding_end_date, 'YYYY-MM-DD') AS end_date
FROM project_funding_source pfs
JOIN investment_action_category iac ON iac.investment_action_category_id = pfs.investment_action_category_id
JOIN funding_source fs ON fs.funding_source_id = iac.funding_source_id
WHERE pfs.project_id = ?
ORDER BY pfs.project_funding_source_id`, r.projectID)
	return sources
}

func (r *sectionReader) iucn() []model.IUCNClassification {
	details := []model.IUCNClassification{}
	r.query(&details, `SELECT
  l1.iucn_conservation_action_level_1_classification_id AS classification,
  l2.iucn_conservation_action_level_2_subclassification_id AS subclassification1,
  l3.iucn_conservation_action_level_3_subclassification_id AS subclassification2
FROM project_iucn_action_classification pic
JOIN iucn_conservation_action_level_3_subclassification l3
  ON l3.iucn_conservation_action_level_3_subclassification_id = pic.iucn_conservation_action_level_3_subclassification_id
JOIN iucn_conservation_action_level_2_subclassification l2
  ON l2.iucn_conservation_action_level_2_subclassification_id = l3.iucn_conservation_action_level_2_subclassification_id
JOIN iucn_conservation_action_level_1_classification l1
  ON l1.iucn_conservation_action_level_1_classification_id = l2.iucn_conservation_action_level_1_classification_id
WHERE pic.project_id = ?
ORDER BY pic.project_iucn_action_classification_id`, r.projectID)
	return details
}

func (r *sectionReader) location(p *model.ProjectRecord) model.LocationSection {
	loc := model.LocationSection{Priority: p.Priority}
	if len(p.GeoJSON) > 0 && r.err == nil {
		fc, err := geojson.UnmarshalFeatureCollection(p.GeoJSON)
		if err != nil {
			r.err = fmt.Errorf("failed to decode project boundary: %w", err)
			return loc
		}
		loc.Geometry = fc
	}
	var regions []int
	r.query(&regions, `SELECT nrm_region_id FROM project_region WHERE project_id = ? ORDER BY project_region_id`, r.projectID)
	if len(regions) > 0 {
		loc.Region = regions[0]
	}
	return loc
}

func (r *sectionReader) species() []int {
	ids := []int{}
	r.query(&ids, `SELECT wldtaxonomic_units_id
FROM project_species
WHERE project_id = ?
ORDER BY wldtaxonomic_units_id`, r.projectID)
	return ids
}

func (r *sectionReader) partnerships() []string {
	names := []string{}
	r.query(&names, `SELECT name
FROM stakeholder_partnership
WHERE project_id = ?
ORDER BY stakeholder_partnership_id`, r.projectID)
	return names
}
