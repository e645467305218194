package models

import "time"

// Setting is a key/value feature flag. Flags gate outer surfaces (e.g.
// whether manual attendance edits are permitted); they do not change the
// core algorithms.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Key       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"key"`
	Value     string    `gorm:"type:varchar(255)" json:"value"`
}

// Setting keys
const (
	SettingManualAttendance = "manual_attendance_enabled"
)
