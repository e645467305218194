package dto

import (
	"attend/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SalaryCalcRequest asks for one employee's salary recomputation.
type SalaryCalcRequest struct {
	EmployeeID   uint   `json:"employeeId" binding:"required"`
	DepartmentID uint   `json:"departmentId"`
	Month        int    `json:"month" binding:"required,min=1,max=12"`
	Year         int    `json:"year" binding:"required,min=2000"`
	Method       string `json:"method"`
}

// BatchCalcRequest asks for a whole-company payroll run.
type BatchCalcRequest struct {
	Month  int    `json:"month" binding:"required,min=1,max=12"`
	Year   int    `json:"year" binding:"required,min=2000"`
	Method string `json:"method"`
}

// SalaryHistoryQuery filters the salary history listing.
type SalaryHistoryQuery struct {
	EmployeeID uint `form:"employeeId" binding:"required"`
	Year       int  `form:"year"`
}

// SalaryResponse is one computed salary with its audit trace.
type SalaryResponse struct {
	ID                 uint                   `json:"id"`
	EmployeeID         uint                   `json:"employeeId"`
	Employee           *types.EmployeeSummary `json:"employee,omitempty"`
	DepartmentID       uint                   `json:"departmentId"`
	Month              int                    `json:"month"`
	Year               int                    `json:"year"`
	Method             string                 `json:"method"`
	WorkingDays        int                    `json:"workingDays"`
	PresentDays        int                    `json:"presentDays"`
	AbsentDays         int                    `json:"absentDays"`
	LateDays           int                    `json:"lateDays"`
	HalfDays           int                    `json:"halfDays"`
	LeaveDays          int                    `json:"leaveDays"`
	AbsenceEquivalent  int                    `json:"absenceEquivalent"`
	BaseSalary         decimal.Decimal        `json:"baseSalary"`
	PerDaySalary       decimal.Decimal        `json:"perDaySalary"`
	Deduction          decimal.Decimal        `json:"deduction"`
	Bonus              decimal.Decimal        `json:"bonus"`
	Additions          decimal.Decimal        `json:"additions"`
	NetSalary          decimal.Decimal        `json:"netSalary"`
	DeductionBreakdown datatypes.JSON         `json:"deductionBreakdown"`
	AdditionBreakdown  datatypes.JSON         `json:"additionBreakdown"`
}
