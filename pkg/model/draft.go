package model

import (
	"encoding/json"
	"time"
)

// Draft is a saved, unsubmitted project form.
type Draft struct {
	ID           int             `json:"id" gorm:"column:webform_draft_id;primaryKey"`
	SystemUserID int             `json:"-" gorm:"column:system_user_id"`
	Name         string          `json:"name" gorm:"column:name"`
	Data         json.RawMessage `json:"data,omitempty" gorm:"column:data"`
	CreateDate   time.Time       `json:"create_date" gorm:"column:create_date"`
	UpdateDate   *time.Time      `json:"update_date" gorm:"column:update_date"`
}

func (Draft) TableName() string {
	return "webform_draft"
}

// DraftRequest is the body of POST and PUT /api/draft
type DraftRequest struct {
	ID   int             `json:"id,omitempty"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}
