package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// DraftsStore manages a user's saved project drafts. Every method is
// scoped to the owning user; another user's draft is ErrNotFound.
type DraftsStore interface {
	CreateDraft(ctx context.Context, systemUserID int, name string, data []byte) (*model.Draft, error)
	UpdateDraft(ctx context.Context, systemUserID, draftID int, name string, data []byte) (*model.Draft, error)
	ListDrafts(ctx context.Context, systemUserID int) ([]model.Draft, error)
	GetDraft(ctx context.Context, systemUserID, draftID int) (*model.Draft, error)
	DeleteDraft(ctx context.Context, systemUserID, draftID int) error
}
