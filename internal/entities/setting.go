package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Last loan id handed out; loan ids are never reused.
	SettingKeyLoanSequence = "loan_sequence"

	// RFC3339 time of the last successful snapshot write
	SettingKeySnapshotSavedAt = "snapshot_saved_at"
)
