package gorm

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure TreatmentsStore implements store.TreatmentsStore
var _ store.TreatmentsStore = (*TreatmentsStore)(nil)

// TreatmentsStore implements store.TreatmentsStore using GORM
type TreatmentsStore struct {
	db *gorm.DB
}

// NewTreatmentsStore creates a new TreatmentsStore
func NewTreatmentsStore(db *gorm.DB) *TreatmentsStore {
	return &TreatmentsStore{db: db}
}

func (s *TreatmentsStore) TreatmentTypes(ctx context.Context) (map[string]int, error) {
	return treatmentTypes(s.db.WithContext(ctx))
}

func (s *TreatmentsStore) UploadTreatments(ctx context.Context, projectID int, units []model.TreatmentUnit, actorID int) (*model.TreatmentUploadResult, error) {
	result := &model.TreatmentUploadResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		types, err := treatmentTypes(tx)
		if err != nil {
			return err
		}

		seen := map[string]bool{}
		for _, u := range units {
			stmt, err := queries.UpsertTreatmentUnit(projectID, u, actorID)
			if err != nil {
				return err
			}
			var unitID int
			if _, err := scan(tx, stmt, &unitID); err != nil {
				return fmt.Errorf("failed to save treatment unit %s: %w", u.UnitID, err)
			}
			if !seen[u.UnitID] {
				seen[u.UnitID] = true
				result.Units++
			}

			stmt, err = queries.InsertTreatment(unitID, u.Year, actorID)
			if err != nil {
				return err
			}
			var treatmentID int
			if _, err := scan(tx, stmt, &treatmentID); err != nil {
				return fmt.Errorf("failed to save treatment for unit %s: %w", u.UnitID, err)
			}
			result.Treatments++

			typeIDs := make([]int, 0, len(u.TypeNames))
			for _, name := range u.TypeNames {
				id, ok := types[strings.ToLower(name)]
				if !ok {
					return fmt.Errorf("unknown treatment type %q", name)
				}
				typeIDs = append(typeIDs, id)
			}
			if len(typeIDs) == 0 {
				continue
			}
			stmt, err = queries.InsertTreatmentTypes(treatmentID, typeIDs)
			if err != nil {
				return err
			}
			if _, err := exec(tx, stmt); err != nil {
				return fmt.Errorf("failed to save treatment types for unit %s: %w", u.UnitID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TreatmentsStore) ListTreatments(ctx context.Context, projectID int, years []int) ([]model.TreatmentRow, error) {
	stmt, err := queries.ListTreatments(projectID, years)
	if err != nil {
		return nil, err
	}
	rows := []model.TreatmentRow{}
	if _, err := scan(s.db.WithContext(ctx), stmt, &rows); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return rows, nil
}

func (s *TreatmentsStore) TreatmentYears(ctx context.Context, projectID int) ([]int, error) {
	years := []int{}
	err := s.db.WithContext(ctx).Raw(`SELECT DISTINCT t.year
FROM treatment t
JOIN treatment_unit tu ON tu.treatment_unit_id = t.treatment_unit_id
WHERE tu.project_id = ?
ORDER BY t.year`, projectID).Scan(&years).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list treatment years: %w", err)
	}
	return years, nil
}

func (s *TreatmentsStore) DeleteTreatmentYear(ctx context.Context, projectID, year int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt, err := queries.DeleteTreatmentsByYear(projectID, year)
		if err != nil {
			return err
		}
		n, err := exec(tx, stmt)
		if err != nil {
			return fmt.Errorf("failed to delete treatments: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}

		stmt, err = queries.DeleteOrphanedTreatmentUnits(projectID)
		if err != nil {
			return err
		}
		if _, err := exec(tx, stmt); err != nil {
			return fmt.Errorf("failed to delete treatment units: %w", err)
		}
		return nil
	})
}

func treatmentTypes(db *gorm.DB) (map[string]int, error) {
	var codes []model.Code
	err := db.Raw(`SELECT treatment_type_id AS id, name FROM treatment_type`).Scan(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch treatment types: %w", err)
	}
	types := make(map[string]int, len(codes))
	for _, c := range codes {
		types[strings.ToLower(c.Name)] = c.ID
	}
	return types, nil
}
