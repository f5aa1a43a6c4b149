package campaign

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusClosed  = "closed"
)

const (
	SubmissionTypePhoto = "photo"
	SubmissionTypeVideo = "video"
	SubmissionTypeText  = "text"
)

type Campaign struct {
	ID             string         `gorm:"column:id;primaryKey" json:"id"`
	Code           string         `gorm:"column:code;uniqueIndex" json:"code"`
	BrandID        string         `gorm:"column:brand_id;index" json:"brand_id"`
	BrandName      string         `gorm:"column:brand_name" json:"brand_name"`
	Title          string         `gorm:"column:title" json:"title"`
	Description    string         `gorm:"column:description" json:"description"`
	Points         int64          `gorm:"column:points" json:"points"`
	SubmissionType string         `gorm:"column:submission_type" json:"submission_type"`
	EndAt          time.Time      `gorm:"column:end_at" json:"end_at"`
	ApplicantCount int64          `gorm:"column:applicant_count" json:"applicant_count"`
	Status         string         `gorm:"column:status;index" json:"status"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func validSubmissionType(t string) bool {
	switch t {
	case SubmissionTypePhoto, SubmissionTypeVideo, SubmissionTypeText:
		return true
	}
	return false
}
