package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SalaryRecord holds one month's payroll figures for one assignment,
// including the full computation trace so figures stay auditable without
// recomputation. Upserts are keyed by (employee, department, month, year);
// recalculation overwrites rather than duplicates.
type SalaryRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	EmployeeID   uint      `gorm:"not null;uniqueIndex:idx_salary_emp_dept_period" json:"employeeId"`
	DepartmentID uint      `gorm:"uniqueIndex:idx_salary_emp_dept_period" json:"departmentId"`
	Month        int       `gorm:"not null;uniqueIndex:idx_salary_emp_dept_period" json:"month"`
	Year         int       `gorm:"not null;uniqueIndex:idx_salary_emp_dept_period" json:"year"`

	Method string `gorm:"type:varchar(16)" json:"method"`
	RunID  string `gorm:"type:varchar(36)" json:"runId"`

	WorkingDays int `json:"workingDays"`
	PresentDays int `json:"presentDays"`
	AbsentDays  int `json:"absentDays"`
	LateDays    int `json:"lateDays"`
	EarlyDays   int `json:"earlyDays"`
	HalfDays    int `json:"halfDays"`
	LeaveDays   int `json:"leaveDays"`

	AbsenceEquivalent int `json:"absenceEquivalent"`

	BaseSalary    decimal.Decimal `gorm:"type:numeric" json:"baseSalary"`
	PerDaySalary  decimal.Decimal `gorm:"type:numeric" json:"perDaySalary"`
	PerHourSalary decimal.Decimal `gorm:"type:numeric" json:"perHourSalary"`
	Deduction     decimal.Decimal `gorm:"type:numeric" json:"deduction"`
	Bonus         decimal.Decimal `gorm:"type:numeric" json:"bonus"`
	Additions     decimal.Decimal `gorm:"type:numeric" json:"additions"`
	NetSalary     decimal.Decimal `gorm:"type:numeric" json:"netSalary"`

	DeductionBreakdown datatypes.JSON `json:"deductionBreakdown"`
	AdditionBreakdown  datatypes.JSON `json:"additionBreakdown"`

	CalculatedAt time.Time `json:"calculatedAt"`

	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;references:ID"`
}
