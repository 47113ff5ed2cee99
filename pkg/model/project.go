package model

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// ProjectSection holds the core project fields.
type ProjectSection struct {
	Name       string `json:"project_name"`
	Objectives string `json:"objectives"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
}

type Contact struct {
	FirstName    string `json:"first_name" gorm:"column:first_name"`
	LastName     string `json:"last_name" gorm:"column:last_name"`
	EmailAddress string `json:"email_address" gorm:"column:email_address"`
	Agency       string `json:"agency" gorm:"column:agency"`
	IsPublic     bool   `json:"is_public" gorm:"column:is_public"`
	IsPrimary    bool   `json:"is_primary" gorm:"column:is_primary"`
}

type ContactSection struct {
	Contacts []Contact `json:"contacts"`
}

type Permit struct {
	ID     int    `json:"permit_id,omitempty" gorm:"column:permit_id"`
	Number string `json:"permit_number" gorm:"column:number"`
	Type   string `json:"permit_type" gorm:"column:type"`
}

type PermitSection struct {
	Permits []Permit `json:"permits"`
}

type FundingSource struct {
	ID                           int     `json:"id,omitempty" gorm:"column:id"`
	AgencyID                     int     `json:"agency_id" gorm:"column:agency_id"`
	AgencyName                   string  `json:"agency_name,omitempty" gorm:"column:agency_name"`
	InvestmentActionCategory     int     `json:"investment_action_category" gorm:"column:investment_action_category"`
	InvestmentActionCategoryName string  `json:"investment_action_category_name,omitempty" gorm:"column:investment_action_category_name"`
	AgencyProjectID              string  `json:"agency_project_id" gorm:"column:agency_project_id"`
	FundingAmount                float64 `json:"funding_amount" gorm:"column:funding_amount"`
	StartDate                    string  `json:"start_date" gorm:"column:start_date"`
	EndDate                      string  `json:"end_date" gorm:"column:end_date"`
}

type FundingSection struct {
	FundingSources []FundingSource `json:"fundingSources"`
}

// IUCNClassification identifies a conservation action by its three levels.
// Only the level 3 subclassification is stored.
type IUCNClassification struct {
	Classification     int `json:"classification" gorm:"column:classification"`
	Subclassification1 int `json:"subClassification1" gorm:"column:subclassification1"`
	Subclassification2 int `json:"subClassification2" gorm:"column:subclassification2"`
}

type IUCNSection struct {
	ClassificationDetails []IUCNClassification `json:"classificationDetails"`
}

type LocationSection struct {
	Geometry *geojson.FeatureCollection `json:"geometry"`
	Region   int                        `json:"region,omitempty"`
	Priority bool                       `json:"priority"`
}

type SpeciesSection struct {
	FocalSpecies []int `json:"focal_species"`
}

type PartnershipSection struct {
	StakeholderPartnerships []string `json:"stakeholder_partnerships"`
}

// PostProjectObject is the body of POST /api/project/create
type PostProjectObject struct {
	Project     ProjectSection     `json:"project"`
	Contact     ContactSection     `json:"contact"`
	Permit      PermitSection      `json:"permit"`
	Funding     FundingSection     `json:"funding"`
	IUCN        IUCNSection        `json:"iucn"`
	Location    LocationSection    `json:"location"`
	Species     SpeciesSection     `json:"species"`
	Partnership PartnershipSection `json:"partnership"`
}

// PutProjectObject is the body of PUT /api/project/{projectId}/update.
// Only the sections present are replaced.
type PutProjectObject struct {
	RevisionCount int                 `json:"revision_count"`
	Project       *ProjectSection     `json:"project,omitempty"`
	Contact       *ContactSection     `json:"contact,omitempty"`
	Permit        *PermitSection      `json:"permit,omitempty"`
	Funding       *FundingSection     `json:"funding,omitempty"`
	IUCN          *IUCNSection        `json:"iucn,omitempty"`
	Location      *LocationSection    `json:"location,omitempty"`
	Species       *SpeciesSection     `json:"species,omitempty"`
	Partnership   *PartnershipSection `json:"partnership,omitempty"`
}

// Project sections that can be requested for update
const (
	EntityProject     = "project"
	EntityContact     = "contact"
	EntityPermit      = "permit"
	EntityFunding     = "funding"
	EntityIUCN        = "iucn"
	EntityLocation    = "location"
	EntitySpecies     = "species"
	EntityPartnership = "partnership"
)

// ProjectEntities lists every project section.
var ProjectEntities = []string{
	EntityProject, EntityContact, EntityPermit, EntityFunding,
	EntityIUCN, EntityLocation, EntitySpecies, EntityPartnership,
}

// ProjectRecord is a row of project.
type ProjectRecord struct {
	ID               int        `json:"id" gorm:"column:project_id"`
	UUID             string     `json:"uuid" gorm:"column:uuid"`
	Name             string     `json:"project_name" gorm:"column:name"`
	Objectives       string     `json:"objectives" gorm:"column:objectives"`
	StartDate        string     `json:"start_date" gorm:"column:start_date"`
	EndDate          *string    `json:"end_date" gorm:"column:end_date"`
	Priority         bool       `json:"priority" gorm:"column:priority"`
	GeoJSON          []byte     `json:"-" gorm:"column:geojson"`
	PublishTimestamp *time.Time `json:"publish_date" gorm:"column:publish_timestamp"`
	CreateDate       time.Time  `json:"create_date" gorm:"column:create_date"`
	RevisionCount    int        `json:"revision_count" gorm:"column:revision_count"`
}

// Published reports whether the project is visible to the public.
func (p *ProjectRecord) Published() bool {
	return p.PublishTimestamp != nil
}

// ProjectView is the response of GET /api/project/{projectId}/view
type ProjectView struct {
	ID          int                `json:"id"`
	UUID        string             `json:"uuid"`
	Project     ProjectDetails     `json:"project"`
	Contact     ContactSection     `json:"contact"`
	Permit      PermitSection      `json:"permit"`
	Funding     FundingSection     `json:"funding"`
	IUCN        IUCNSection        `json:"iucn"`
	Location    LocationSection    `json:"location"`
	Species     SpeciesSection     `json:"species"`
	Partnership PartnershipSection `json:"partnership"`
}

// ProjectDetails is the project section of a view.
type ProjectDetails struct {
	ProjectSection
	ObjectivesHTML string     `json:"objectives_html,omitempty"`
	PublishDate    *time.Time `json:"publish_date"`
	RevisionCount  int        `json:"revision_count"`
}

// ProjectForUpdate is the response of GET /api/project/{projectId}/update
type ProjectForUpdate struct {
	RevisionCount int                 `json:"revision_count"`
	Project       *ProjectSection     `json:"project,omitempty"`
	Contact       *ContactSection     `json:"contact,omitempty"`
	Permit        *PermitSection      `json:"permit,omitempty"`
	Funding       *FundingSection     `json:"funding,omitempty"`
	IUCN          *IUCNSection        `json:"iucn,omitempty"`
	Location      *LocationSection    `json:"location,omitempty"`
	Species       *SpeciesSection     `json:"species,omitempty"`
	Partnership   *PartnershipSection `json:"partnership,omitempty"`
}

// ProjectListItem is a row of a project list.
type ProjectListItem struct {
	ID            int        `json:"id" gorm:"column:id"`
	Name          string     `json:"name" gorm:"column:name"`
	StartDate     string     `json:"start_date" gorm:"column:start_date"`
	EndDate       *string    `json:"end_date" gorm:"column:end_date"`
	PublishDate   *time.Time `json:"publish_date" gorm:"column:publish_date"`
	Agencies      string     `json:"contact_agency_list" gorm:"column:agencies"`
	PermitNumbers string     `json:"permits_list" gorm:"column:permit_numbers"`
}

// ProjectFilter narrows a project list.
type ProjectFilter struct {
	Keyword       string
	ContactAgency string
	FundingAgency int
	PermitNumber  string
	StartDate     string
	EndDate       string
	Species       []int
	Region        int
}

// BoundingBox is a lon/lat rectangle.
type BoundingBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// SearchResult is a project boundary returned by spatial search.
type SearchResult struct {
	ID       int    `json:"id" gorm:"column:id"`
	Name     string `json:"name" gorm:"column:name"`
	Geometry []byte `json:"-" gorm:"column:geometry"`
}

// PublishRequest is the body of PUT /api/project/{projectId}/publish
type PublishRequest struct {
	Publish bool `json:"publish"`
}

// CreatedResponse is returned by endpoints that create a row.
type CreatedResponse struct {
	ID int `json:"id"`
}
