package model

// InvestmentActionCategory belongs to a funding source.
type InvestmentActionCategory struct {
	ID   int    `json:"id" gorm:"column:id"`
	FsID int    `json:"fs_id" gorm:"column:fs_id"`
	Name string `json:"name" gorm:"column:name"`
}

// IUCNLevel is a node of the IUCN classification hierarchy.
type IUCNLevel struct {
	ID       int    `json:"id" gorm:"column:id"`
	ParentID int    `json:"parent_id,omitempty" gorm:"column:parent_id"`
	Name     string `json:"name" gorm:"column:name"`
}

// CodeSet is the response of GET /api/codes
type CodeSet struct {
	SystemRoles                      []Code                     `json:"system_roles"`
	ProjectRoles                     []Code                     `json:"project_roles"`
	AdministrativeActivityStatusType []Code                     `json:"administrative_activity_status_type"`
	FundingSource                    []Code                     `json:"funding_source"`
	InvestmentActionCategory         []InvestmentActionCategory `json:"investment_action_category"`
	IUCNLevel1                       []IUCNLevel                `json:"iucn_conservation_action_level_1_classification"`
	IUCNLevel2                       []IUCNLevel                `json:"iucn_conservation_action_level_2_subclassification"`
	IUCNLevel3                       []IUCNLevel                `json:"iucn_conservation_action_level_3_subclassification"`
	Regions                          []Code                     `json:"regions"`
	TreatmentTypes                   []Code                     `json:"treatment_types"`
	IdentitySources                  []Code                     `json:"identity_sources"`
}
