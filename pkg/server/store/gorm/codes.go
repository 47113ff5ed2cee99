package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure CodesStore implements store.CodesStore
var _ store.CodesStore = (*CodesStore)(nil)

// CodesStore implements store.CodesStore using GORM
type CodesStore struct {
	db *gorm.DB
}

// NewCodesStore creates a new CodesStore
func NewCodesStore(db *gorm.DB) *CodesStore {
	return &CodesStore{db: db}
}

// GetCodes reads every code table. End-dated codes are left out.
func (s *CodesStore) GetCodes(ctx context.Context) (*model.CodeSet, error) {
	db := s.db.WithContext(ctx)
	codes := &model.CodeSet{}

	lists := []struct {
		name string
		dest interface{}
		sql  string
	}{
		{"system_role", &codes.SystemRoles,
			`SELECT system_role_id AS id, name FROM system_role WHERE record_end_date IS NULL ORDER BY system_role_id`},
		{"project_role", &codes.ProjectRoles,
			`SELECT project_role_id AS id, name FROM project_role WHERE record_end_date IS NULL ORDER BY project_role_id`},
		{"administrative_activity_status_type", &codes.AdministrativeActivityStatusType,
			`SELECT administrative_activity_status_type_id AS id, name FROM administrative_activity_status_type ORDER BY 1`},
		{"funding_source", &codes.FundingSource,
			`SELECT funding_source_id AS id, name FROM funding_source WHERE record_end_date IS NULL ORDER BY name`},
		{"investment_action_category", &codes.InvestmentActionCategory,
			`SELECT investment_action_category_id AS id, funding_source_id AS fs_id, name
FROM investment_action_category WHERE record_end_date IS NULL ORDER BY name`},
		{"iucn level 1", &codes.IUCNLevel1,
			`SELECT iucn_conservation_action_level_1_classification_id AS id, name
FROM iucn_conservation_action_level_1_classification ORDER BY 1`},
		{"iucn level 2", &codes.IUCNLevel2,
			`SELECT iucn_conservation_action_level_2_subclassification_id AS id,
  iucn_conservation_action_level_1_classification_id AS parent_id, name
FROM iucn_conservation_action_level_2_subclassification ORDER BY 1`},
		{"iucn level 3", &codes.IUCNLevel3,
			`SELECT iucn_conservation_action_level_3_subclassification_id AS id,
  iucn_conservation_action_level_2_subclassification_id AS parent_id, name
FROM iucn_conservation_action_level_3_subclassification ORDER BY 1`},
		{"nrm_region", &codes.Regions,
			`SELECT nrm_region_id AS id, name FROM nrm_region ORDER BY name`},
		{"treatment_type", &codes.TreatmentTypes,
			`SELECT treatment_type_id AS id, name FROM treatment_type ORDER BY name`},
		{"user_identity_source", &codes.IdentitySources,
			`SELECT user_identity_source_id AS id, name FROM user_identity_source WHERE record_end_date IS NULL ORDER BY 1`},
	}

	for _, l := range lists {
		if err := db.Raw(l.sql).Scan(l.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch %s codes: %w", l.name, err)
		}
	}
	return codes, nil
}
