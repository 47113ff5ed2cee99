package codes

import (
	"fmt"

	"gorm.io/gorm"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// GormStore implements Store against the code tables.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// ensure selects the row matching where, inserting it first when absent.
func (s *GormStore) ensure(table, idColumn, insertColumns, where string, args ...interface{}) (int, error) {
	placeholders := "?"
	for i := 1; i < len(args); i++ {
		placeholders += ", ?"
	}

	insert := fmt.Sprintf(
		`INSERT INTO %s (%s) SELECT %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s)`,
		table, insertColumns, placeholders, table, where,
	)
	insertArgs := append(append([]interface{}{}, args...), args...)
	if err := s.db.Exec(insert, insertArgs...).Error; err != nil {
		return 0, err
	}

	var id int
	err := s.db.Raw(fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, idColumn, table, where), args...).Row().Scan(&id)
	return id, err
}

func (s *GormStore) EnsureFundingSource(name string) (int, error) {
	return s.ensure("funding_source", "funding_source_id", "name", "name = ?", name)
}

func (s *GormStore) EnsureInvestmentActionCategory(fundingSourceID int, name string) (int, error) {
	return s.ensure("investment_action_category", "investment_action_category_id",
		"funding_source_id, name", "funding_source_id = ? AND name = ?", fundingSourceID, name)
}

func (s *GormStore) EnsureRegion(name string) (int, error) {
	return s.ensure("nrm_region", "nrm_region_id", "name", "name = ?", name)
}

func (s *GormStore) EnsureTreatmentType(name, description string) (int, error) {
	id, err := s.ensure("treatment_type", "treatment_type_id", "name", "name = ?", name)
	if err != nil || description == "" {
		return id, err
	}
	err = s.db.Exec(`UPDATE treatment_type SET description = ? WHERE treatment_type_id = ?`, description, id).Error
	return id, err
}

func (s *GormStore) EnsureIUCN(level, parentID int, name string) (int, error) {
	switch level {
	case 1:
		return s.ensure("iucn_conservation_action_level_1_classification",
			"iucn_conservation_action_level_1_classification_id", "name", "name = ?", name)
	case 2:
		return s.ensure("iucn_conservation_action_level_2_subclassification",
			"iucn_conservation_action_level_2_subclassification_id",
			"iucn_conservation_action_level_1_classification_id, name",
			"iucn_conservation_action_level_1_classification_id = ? AND name = ?", parentID, name)
	case 3:
		return s.ensure("iucn_conservation_action_level_3_subclassification",
			"iucn_conservation_action_level_3_subclassification_id",
			"iucn_conservation_action_level_2_subclassification_id, name",
			"iucn_conservation_action_level_2_subclassification_id = ? AND name = ?", parentID, name)
	}
	return 0, fmt.Errorf("invalid iucn level %d", level)
}
