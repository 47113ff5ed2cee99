package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// TreatmentsStore manages treatment units and their yearly treatments
type TreatmentsStore interface {
	// TreatmentTypes maps lower-cased treatment type names to ids.
	TreatmentTypes(ctx context.Context) (map[string]int, error)

	// UploadTreatments upserts the units and adds their treatments in one
	// transaction.
	UploadTreatments(ctx context.Context, projectID int, units []model.TreatmentUnit, actorID int) (*model.TreatmentUploadResult, error)

	ListTreatments(ctx context.Context, projectID int, years []int) ([]model.TreatmentRow, error)

	TreatmentYears(ctx context.Context, projectID int) ([]int, error)

	// DeleteTreatmentYear removes a year's treatments and the units left
	// without any.
	DeleteTreatmentYear(ctx context.Context, projectID, year int) error
}
