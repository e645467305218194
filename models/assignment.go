package models

import (
	"time"

	"github.com/lib/pq"
)

// DepartmentAssignment describes one employee's shift in one department:
// daily schedule, weekday overrides, weekly off days, leverage minutes
// and the salary terms payroll runs against. An employee with more than
// one active assignment is multi-department and goes through the shift
// splitter.
type DepartmentAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	EmployeeID   uint      `gorm:"not null;uniqueIndex:idx_assignment_emp_dept" json:"employeeId"`
	DepartmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_emp_dept" json:"departmentId"`
	IsPrimary    bool      `gorm:"default:false" json:"isPrimary"`
	Active       bool      `gorm:"default:true" json:"active"`

	// Schedule; empty time strings fall through to department/global
	// defaults. Times use the "15:04" wall-clock form.
	CheckInTime         string        `gorm:"type:varchar(5)" json:"checkInTime"`
	CheckOutTime        string        `gorm:"type:varchar(5)" json:"checkOutTime"`
	CheckInLeverageMin  *int          `json:"checkInLeverageMin"`
	CheckOutLeverageMin *int          `json:"checkOutLeverageMin"`
	WeeklyOffDays       pq.Int64Array `gorm:"type:integer[]" json:"weeklyOffDays"`

	// Salary terms
	BaseSalary         int64   `gorm:"default:0" json:"baseSalary"`
	LeaveThreshold     int     `gorm:"default:0" json:"leaveThreshold"`
	WorkingDaysPerWeek int     `gorm:"default:5" json:"workingDaysPerWeek"`
	WorkingHoursPerDay float64 `gorm:"default:0" json:"workingHoursPerDay"`

	Overrides  []WeekdayOverride `json:"overrides" gorm:"foreignKey:AssignmentID"`
	Employee   *Employee         `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;references:ID"`
	Department *Department       `json:"department,omitempty" gorm:"foreignKey:DepartmentID;references:ID"`
}

// IsOffDay reports whether the assignment marks the weekday off.
func (a *DepartmentAssignment) IsOffDay(d time.Weekday) bool {
	for _, off := range a.WeeklyOffDays {
		if time.Weekday(off) == d {
			return true
		}
	}
	return false
}

// OverrideFor returns the weekday-specific schedule override, or nil.
func (a *DepartmentAssignment) OverrideFor(d time.Weekday) *WeekdayOverride {
	for i := range a.Overrides {
		if time.Weekday(a.Overrides[i].Weekday) == d {
			return &a.Overrides[i]
		}
	}
	return nil
}

// WeekdayOverride replaces the assignment's default check-in/out times on
// one weekday.
type WeekdayOverride struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AssignmentID uint   `gorm:"not null;uniqueIndex:idx_override_assignment_day" json:"assignmentId"`
	Weekday      int    `gorm:"not null;uniqueIndex:idx_override_assignment_day" json:"weekday"`
	CheckInTime  string `gorm:"type:varchar(5)" json:"checkInTime"`
	CheckOutTime string `gorm:"type:varchar(5)" json:"checkOutTime"`
}
