package models

import "time"

// AttendanceRecord is one employee's day in one department. The
// (employee, department, date) tuple is unique; concurrent creates race
// on it and the loser must retry as an update (see services).
type AttendanceRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	EmployeeID   uint      `gorm:"not null;uniqueIndex:idx_attendance_emp_dept_date" json:"employeeId"`
	DepartmentID uint      `gorm:"uniqueIndex:idx_attendance_emp_dept_date" json:"departmentId"`
	// Date is normalized to midnight UTC.
	Date time.Time `gorm:"not null;uniqueIndex:idx_attendance_emp_dept_date" json:"date"`

	CheckIn       *time.Time `json:"checkIn"`
	CheckOut      *time.Time `json:"checkOut"`
	Status        string     `gorm:"type:varchar(24);default:'pending'" json:"status"`
	WorkingHours  float64    `gorm:"default:0" json:"workingHours"`
	IsManualEntry bool       `gorm:"default:false" json:"isManualEntry"`
	DeviceID      string     `gorm:"type:varchar(32)" json:"deviceId"`
	ModifiedBy    *uint      `json:"modifiedBy"`
	Remarks       string     `json:"remarks"`

	Employee   *Employee   `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;references:ID"`
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID;references:ID"`
}
