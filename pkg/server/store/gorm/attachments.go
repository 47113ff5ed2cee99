package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure AttachmentsStore implements store.AttachmentsStore
var _ store.AttachmentsStore = (*AttachmentsStore)(nil)

const attachmentSelect = `SELECT
  project_attachment_id,
  project_id,
  uuid,
  file_name,
  COALESCE(file_type, '') AS file_type,
  file_size,
  title,
  description,
  key,
  COALESCE(update_date, create_date) AS last_modified,
  revision_count
FROM project_attachment`

// AttachmentsStore implements store.AttachmentsStore using GORM
type AttachmentsStore struct {
	db *gorm.DB
}

// NewAttachmentsStore creates a new AttachmentsStore
func NewAttachmentsStore(db *gorm.DB) *AttachmentsStore {
	return &AttachmentsStore{db: db}
}

func (s *AttachmentsStore) ListAttachments(ctx context.Context, projectID int) ([]model.Attachment, error) {
	attachments := []model.Attachment{}
	err := s.db.WithContext(ctx).Raw(attachmentSelect+`
WHERE project_id = ?
ORDER BY file_name`, projectID).Scan(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

func (s *AttachmentsStore) GetAttachment(ctx context.Context, projectID, attachmentID int) (*model.Attachment, error) {
	return getAttachment(s.db.WithContext(ctx), projectID, attachmentID)
}

func (s *AttachmentsStore) UpsertAttachment(ctx context.Context, projectID int, a model.Attachment, actorID int, write func(key string) error) (*model.Attachment, error) {
	var saved *model.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt, err := queries.UpsertAttachment(projectID, a, actorID)
		if err != nil {
			return err
		}
		var row struct {
			ID  int    `gorm:"column:project_attachment_id"`
			Key string `gorm:"column:key"`
		}
		if _, err := scan(tx, stmt, &row); err != nil {
			return fmt.Errorf("failed to save attachment: %w", err)
		}

		if err := write(row.Key); err != nil {
			return err
		}

		saved, err = getAttachment(tx, projectID, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *AttachmentsStore) DeleteAttachment(ctx context.Context, projectID, attachmentID int) (string, error) {
	stmt, err := queries.DeleteAttachment(projectID, attachmentID)
	if err != nil {
		return "", err
	}
	var key string
	n, err := scan(s.db.WithContext(ctx), stmt, &key)
	if err != nil {
		return "", fmt.Errorf("failed to delete attachment: %w", err)
	}
	if n == 0 {
		return "", store.ErrNotFound
	}
	return key, nil
}

func getAttachment(db *gorm.DB, projectID, attachmentID int) (*model.Attachment, error) {
	var a model.Attachment
	res := db.Raw(attachmentSelect+`
WHERE project_id = ?
  AND project_attachment_id = ?`, projectID, attachmentID).Scan(&a)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &a, nil
}
