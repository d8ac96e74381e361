package model

import (
	"time"

	"gorm.io/datatypes"
)

// BulkJobStatus represents bulk job lifecycle state
type BulkJobStatus string

const (
	BulkJobStatusPending   BulkJobStatus = "pending"
	BulkJobStatusRunning   BulkJobStatus = "running"
	BulkJobStatusCompleted BulkJobStatus = "completed"
	BulkJobStatusFailed    BulkJobStatus = "failed"
	BulkJobStatusCanceled  BulkJobStatus = "canceled"
)

// BulkJob records one template application run across a set of domains.
// Results holds the per-domain outcome array exactly as the applicator
// produced it.
type BulkJob struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProfileID   string         `gorm:"type:varchar(128);index:idx_bulk_jobs_profile;not null" json:"profile_id"`
	Template    string         `gorm:"type:varchar(64);not null" json:"template"`
	DomainsJSON datatypes.JSON `gorm:"type:json;not null" json:"domains_json"`
	OptionsJSON datatypes.JSON `gorm:"type:json" json:"options_json"`
	Status      BulkJobStatus  `gorm:"type:enum('pending','running','completed','failed','canceled');default:'pending'" json:"status"`
	Results     datatypes.JSON `gorm:"type:json" json:"results"`
	SucceededN  int            `gorm:"column:succeeded_n" json:"succeeded_n"`
	FailedN     int            `gorm:"column:failed_n" json:"failed_n"`
	Error       *string        `gorm:"type:varchar(255)" json:"error"`
	StartedAt   *time.Time     `json:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for BulkJob model
func (BulkJob) TableName() string {
	return "bulk_jobs"
}
