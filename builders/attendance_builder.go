package builders

import (
	"time"

	"attend/constants"
	"attend/models"
)

// AttendanceBuilder assembles an AttendanceRecord step by step.
type AttendanceBuilder struct {
	record *models.AttendanceRecord
}

// NewAttendanceBuilder returns a builder for a fresh pending record.
func NewAttendanceBuilder() *AttendanceBuilder {
	return &AttendanceBuilder{
		record: &models.AttendanceRecord{
			Status: constants.StatusPending,
		},
	}
}

func (b *AttendanceBuilder) WithEmployee(employeeID uint) *AttendanceBuilder {
	b.record.EmployeeID = employeeID
	return b
}

func (b *AttendanceBuilder) WithDepartment(departmentID uint) *AttendanceBuilder {
	b.record.DepartmentID = departmentID
	return b
}

func (b *AttendanceBuilder) WithDate(date time.Time) *AttendanceBuilder {
	b.record.Date = date
	return b
}

func (b *AttendanceBuilder) WithCheckIn(t *time.Time) *AttendanceBuilder {
	b.record.CheckIn = t
	return b
}

func (b *AttendanceBuilder) WithCheckOut(t *time.Time) *AttendanceBuilder {
	b.record.CheckOut = t
	return b
}

func (b *AttendanceBuilder) WithStatus(status string) *AttendanceBuilder {
	b.record.Status = status
	return b
}

func (b *AttendanceBuilder) WithDevice(deviceID string) *AttendanceBuilder {
	b.record.DeviceID = deviceID
	return b
}

func (b *AttendanceBuilder) WithRemarks(remarks string) *AttendanceBuilder {
	b.record.Remarks = remarks
	return b
}

// ManualBy marks the record as a manual entry made by the given user.
func (b *AttendanceBuilder) ManualBy(userID uint) *AttendanceBuilder {
	b.record.IsManualEntry = true
	b.record.ModifiedBy = &userID
	return b
}

// Build returns the assembled record.
func (b *AttendanceBuilder) Build() *models.AttendanceRecord {
	return b.record
}
