package commands

import (
	"attend/models"

	"gorm.io/gorm"
)

// AttendanceCommand is a single persistence mutation on an attendance
// record.
type AttendanceCommand interface {
	Execute() error
}

// CreateAttendanceCommand inserts a new record.
type CreateAttendanceCommand struct {
	record *models.AttendanceRecord
	db     *gorm.DB
}

func NewCreateAttendanceCommand(record *models.AttendanceRecord, db *gorm.DB) *CreateAttendanceCommand {
	return &CreateAttendanceCommand{
		record: record,
		db:     db,
	}
}

func (c *CreateAttendanceCommand) Execute() error {
	return c.db.Create(c.record).Error
}

// UpdateAttendanceCommand saves changes to an existing record.
type UpdateAttendanceCommand struct {
	record *models.AttendanceRecord
	db     *gorm.DB
}

func NewUpdateAttendanceCommand(record *models.AttendanceRecord, db *gorm.DB) *UpdateAttendanceCommand {
	return &UpdateAttendanceCommand{
		record: record,
		db:     db,
	}
}

func (c *UpdateAttendanceCommand) Execute() error {
	return c.db.Save(c.record).Error
}

// DeleteAttendanceCommand removes a record by id. Only explicit
// administrative corrections go through this path.
type DeleteAttendanceCommand struct {
	recordID uint
	db       *gorm.DB
}

func NewDeleteAttendanceCommand(recordID uint, db *gorm.DB) *DeleteAttendanceCommand {
	return &DeleteAttendanceCommand{
		recordID: recordID,
		db:       db,
	}
}

func (c *DeleteAttendanceCommand) Execute() error {
	return c.db.Delete(&models.AttendanceRecord{}, c.recordID).Error
}
