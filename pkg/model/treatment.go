package model

import "encoding/json"

// TreatmentUnit is a polygon of a project where treatments are applied.
type TreatmentUnit struct {
	ID        int      `json:"id" gorm:"column:treatment_unit_id"`
	UnitID    string   `json:"unit_id" gorm:"column:unit_id"`
	Width     float64  `json:"width" gorm:"column:width"`
	Length    float64  `json:"length" gorm:"column:length"`
	Area      float64  `json:"area" gorm:"column:area"`
	Comments  string   `json:"comments" gorm:"column:comments"`
	GeoJSON   []byte   `json:"-" gorm:"column:geojson"`
	Year      int      `json:"-" gorm:"-"`
	TypeNames []string `json:"-" gorm:"-"`
}

// TreatmentRow is one unit and year with the treatment types applied.
type TreatmentRow struct {
	UnitID   string          `json:"unit_id" gorm:"column:unit_id"`
	Width    float64         `json:"width" gorm:"column:width"`
	Length   float64         `json:"length" gorm:"column:length"`
	Area     float64         `json:"area" gorm:"column:area"`
	Comments *string         `json:"comments" gorm:"column:comments"`
	Year     int             `json:"year" gorm:"column:year"`
	Types    string          `json:"treatments" gorm:"column:types"`
	Geometry json.RawMessage `json:"geometry" gorm:"column:geojson"`
}

// TreatmentUploadResult summarises an upload.
type TreatmentUploadResult struct {
	Units      int `json:"units"`
	Treatments int `json:"treatments"`
}
