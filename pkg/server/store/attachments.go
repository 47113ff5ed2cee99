package store

import (
	"context"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// AttachmentsStore manages project attachment rows. Object bytes live in
// the object store.
type AttachmentsStore interface {
	ListAttachments(ctx context.Context, projectID int) ([]model.Attachment, error)

	// GetAttachment returns ErrNotFound for unknown ids.
	GetAttachment(ctx context.Context, projectID, attachmentID int) (*model.Attachment, error)

	// UpsertAttachment inserts or replaces the row for a file name, then
	// calls write with the object key before committing. A write error
	// rolls the row back.
	UpsertAttachment(ctx context.Context, projectID int, a model.Attachment, actorID int, write func(key string) error) (*model.Attachment, error)

	// DeleteAttachment removes the row and returns its object key.
	DeleteAttachment(ctx context.Context, projectID, attachmentID int) (string, error)
}
