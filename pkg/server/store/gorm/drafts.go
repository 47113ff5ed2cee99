package gorm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/queries"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// Ensure DraftsStore implements store.DraftsStore
var _ store.DraftsStore = (*DraftsStore)(nil)

// DraftsStore implements store.DraftsStore using GORM
type DraftsStore struct {
	db *gorm.DB
}

// NewDraftsStore creates a new DraftsStore
func NewDraftsStore(db *gorm.DB) *DraftsStore {
	return &DraftsStore{db: db}
}

type draftStamp struct {
	ID   int       `gorm:"column:id"`
	Date time.Time `gorm:"column:date"`
}

func (s *DraftsStore) CreateDraft(ctx context.Context, systemUserID int, name string, data []byte) (*model.Draft, error) {
	stmt, err := queries.InsertDraft(systemUserID, name, data)
	if err != nil {
		return nil, err
	}
	var stamp draftStamp
	if _, err := scan(s.db.WithContext(ctx), stmt, &stamp); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return &model.Draft{ID: stamp.ID, SystemUserID: systemUserID, Name: name, CreateDate: stamp.Date}, nil
}

func (s *DraftsStore) UpdateDraft(ctx context.Context, systemUserID, draftID int, name string, data []byte) (*model.Draft, error) {
	stmt, err := queries.UpdateDraft(systemUserID, draftID, name, data)
	if err != nil {
		return nil, err
	}
	var stamp draftStamp
	n, err := scan(s.db.WithContext(ctx), stmt, &stamp)
	if err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return &model.Draft{ID: stamp.ID, SystemUserID: systemUserID, Name: name, UpdateDate: &stamp.Date}, nil
}

func (s *DraftsStore) ListDrafts(ctx context.Context, systemUserID int) ([]model.Draft, error) {
	drafts := []model.Draft{}
	tx := s.db.WithContext(ctx).
		Select("webform_draft_id", "system_user_id", "name", "create_date", "update_date").
		Where("system_user_id = ?", systemUserID).
		Order("COALESCE(update_date, create_date) DESC").
		Find(&drafts)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", tx.Error)
	}
	return drafts, nil
}

func (s *DraftsStore) GetDraft(ctx context.Context, systemUserID, draftID int) (*model.Draft, error) {
	var draft model.Draft
	tx := s.db.WithContext(ctx).
		Where("webform_draft_id = ? AND system_user_id = ?", draftID, systemUserID).
		First(&draft)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch draft: %w", tx.Error)
	}
	return &draft, nil
}

func (s *DraftsStore) DeleteDraft(ctx context.Context, systemUserID, draftID int) error {
	stmt, err := queries.DeleteDraft(systemUserID, draftID)
	if err != nil {
		return err
	}
	n, err := exec(s.db.WithContext(ctx), stmt)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
