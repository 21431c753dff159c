package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncLog statuses.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// MappingRecord links an external system's record to a local one. The
// (external_id, external_type) pair is unique; stale mappings are kept,
// not garbage-collected.
type MappingRecord struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	ExternalID   string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_mappings_external,priority:1"`
	ExternalType string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_mappings_external,priority:2"`
	InternalID   uint           `gorm:"not null"`
	InternalType string         `gorm:"type:varchar(50);not null"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	LastSyncedAt time.Time      `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

// SyncLog is the audit row for one reconciliation run. It is written at
// start, updated once at the end, and immutable afterwards.
type SyncLog struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	SyncType      string     `gorm:"type:varchar(50);not null;index"`
	Status        string     `gorm:"type:varchar(20);not null;default:'running'"`
	TriggeredBy   *string    `gorm:"type:varchar(100)"`
	RecordsTotal  int        `gorm:"not null;default:0"`
	RecordsSynced int        `gorm:"not null;default:0"`
	RecordsFailed int        `gorm:"not null;default:0"`
	ErrorMessage  string     `gorm:"type:text"`
	StartedAt     time.Time  `gorm:"not null"`
	CompletedAt   *time.Time
}

// Local directory records the sync jobs upsert into. Only the fields the
// upstream systems own are modeled; the rest of the HR schema lives in the
// main back-office layer.

type Employee struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	FirstName  string    `gorm:"type:varchar(100);not null"`
	LastName   string    `gorm:"type:varchar(100);not null"`
	Email      string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Position   string    `gorm:"type:varchar(100)"`
	Department string    `gorm:"type:varchar(100)"`
	Active     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

type Trainer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Student struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Cohort    string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Enrollment struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	StudentID   uint       `gorm:"not null;index"`
	CourseCode  string     `gorm:"type:varchar(100);not null"`
	Status      string     `gorm:"type:varchar(50);not null"`
	CompletedAt *time.Time
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}
