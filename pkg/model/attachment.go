package model

import "time"

type Attachment struct {
	ID            int       `json:"id" gorm:"column:project_attachment_id"`
	ProjectID     int       `json:"-" gorm:"column:project_id"`
	UUID          string    `json:"uuid" gorm:"column:uuid"`
	FileName      string    `json:"fileName" gorm:"column:file_name"`
	FileType      string    `json:"fileType" gorm:"column:file_type"`
	Size          int64     `json:"size" gorm:"column:file_size"`
	Title         *string   `json:"title" gorm:"column:title"`
	Description   *string   `json:"description" gorm:"column:description"`
	Key           string    `json:"-" gorm:"column:key"`
	LastModified  time.Time `json:"lastModified" gorm:"column:last_modified"`
	RevisionCount int       `json:"revisionCount" gorm:"column:revision_count"`
}

// SignedURL is returned by the signed-url endpoint.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
