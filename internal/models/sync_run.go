package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncRunStatus is the terminal state of one reconciliation run.
type SyncRunStatus string

const (
	SyncRunSuccess SyncRunStatus = "success"
	SyncRunError   SyncRunStatus = "error"
)

// SyncRun is the per-run audit ledger shown on the admin status page. The
// DataSource row remains the completion signal the pipeline itself consumes;
// this table only records history.
type SyncRun struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DataSourceID uuid.UUID     `gorm:"type:uuid;not null;index" json:"data_source_id"`
	Status       SyncRunStatus `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage *string       `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt    time.Time     `gorm:"not null" json:"started_at"`
	FinishedAt   time.Time     `gorm:"not null" json:"finished_at"`
	ItemsTotal   int           `gorm:"default:0" json:"items_total"`
	ItemsCreated int           `gorm:"default:0" json:"items_created"`
	ItemsUpdated int           `gorm:"default:0" json:"items_updated"`
	ItemsSkipped int           `gorm:"default:0" json:"items_skipped"`
	ItemsFailed  int           `gorm:"default:0" json:"items_failed"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }
