package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Scan struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID          string            `gorm:"index;not null" json:"user_id"`
	ScanRef         string            `gorm:"size:16" json:"scan_ref"`
	ImageURL        string            `json:"image_url"`
	ThumbnailURL    string            `json:"thumbnail_url"`
	StorageID       string            `json:"storage_id,omitempty"`
	DetectionResult datatypes.JSONMap `gorm:"type:jsonb" json:"detection_result"`
	AnalysisResult  datatypes.JSONMap `gorm:"type:jsonb" json:"analysis_result"`
	Color           datatypes.JSONMap `gorm:"type:jsonb" json:"color,omitempty"`
	Variety         string            `json:"variety"`
	QualityScore    float64           `json:"quality_score"`
	Status          string            `json:"status"`
	DurianCount     int               `json:"durian_count"`
	Confidence      float64           `json:"confidence"`

	Timestamp
}

func (Scan) TableName() string {
	return "scans"
}
