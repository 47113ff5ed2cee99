package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// CodesStore reads the code tables
type CodesStore interface {
	GetCodes(ctx context.Context) (*model.CodeSet, error)
}
