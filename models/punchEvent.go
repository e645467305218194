package models

import "time"

// PunchEvent is the immutable audit log of raw device records. Rows are
// inserted with an ON CONFLICT DO NOTHING upsert keyed by
// (device_user_id, timestamp, device_id) so replays are no-ops; rows are
// never updated.
type PunchEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	DeviceUserID string    `gorm:"type:varchar(24);not null;uniqueIndex:idx_punch_dedup" json:"deviceUserId"`
	Timestamp    time.Time `gorm:"not null;uniqueIndex:idx_punch_dedup" json:"timestamp"`
	DeviceID     string    `gorm:"type:varchar(32);uniqueIndex:idx_punch_dedup" json:"deviceId"`
	// Serial is the device-local sequence number; 0 for pushed records,
	// which carry no serial.
	Serial     uint64 `gorm:"default:0" json:"serial"`
	VerifyType int    `json:"verifyType"`
	State      int    `json:"state"`
}
