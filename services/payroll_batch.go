package services

import (
	"context"

	"attend/constants"
	apperrors "attend/errors"
	"attend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchItem is one successfully calculated salary in a batch run.
type BatchItem struct {
	EmployeeID   uint            `json:"employeeId"`
	DepartmentID uint            `json:"departmentId"`
	SalaryID     uint            `json:"salaryId"`
	NetSalary    decimal.Decimal `json:"netSalary"`
}

// BatchError is one employee the run skipped, with the reason.
type BatchError struct {
	EmployeeID   uint   `json:"employeeId"`
	DepartmentID uint   `json:"departmentId"`
	Reason       string `json:"reason"`
}

// BatchSummary reports a whole batch payroll run. Individual failures
// never abort the run; they land in Errors.
type BatchSummary struct {
	RunID   string       `json:"runId"`
	Month   int          `json:"month"`
	Year    int          `json:"year"`
	Results []BatchItem  `json:"results"`
	Errors  []BatchError `json:"errors"`
}

// CalculateBatch recomputes salaries for every active, non-exempt
// employee with at least one active assignment. Safe to run concurrently
// with single recomputes; the upsert key makes overlapping writes
// converge.
func (p *PayrollService) CalculateBatch(ctx context.Context, month, year int, method string) (*BatchSummary, error) {
	req := SalaryCalcRequest{Month: month, Year: year, Method: method}
	if err := validateCalcRequest(&req); err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		RunID:   uuid.NewString(),
		Month:   month,
		Year:    year,
		Results: []BatchItem{},
		Errors:  []BatchError{},
	}

	var employees []models.Employee
	err := p.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		Where("status = ?", constants.EmployeeStatusActive).
		Find(&employees).Error
	if err != nil {
		return nil, err
	}

	for i := range employees {
		emp := &employees[i]
		if constants.IsAttendanceExempt(emp.Role) {
			continue
		}
		for j := range emp.Assignments {
			a := &emp.Assignments[j]
			rec, err := p.calculateAssignment(ctx, emp, a, SalaryCalcRequest{
				EmployeeID:   emp.ID,
				DepartmentID: a.DepartmentID,
				Month:        month,
				Year:         year,
				Method:       req.Method,
				RunID:        summary.RunID,
			})
			if err != nil {
				reason := err.Error()
				if appErr := apperrors.GetAppError(err); appErr != nil {
					reason = appErr.Message
				}
				summary.Errors = append(summary.Errors, BatchError{
					EmployeeID:   emp.ID,
					DepartmentID: a.DepartmentID,
					Reason:       reason,
				})
				continue
			}
			summary.Results = append(summary.Results, BatchItem{
				EmployeeID:   emp.ID,
				DepartmentID: a.DepartmentID,
				SalaryID:     rec.ID,
				NetSalary:    rec.NetSalary,
			})
		}
	}

	p.logger.Info("batch payroll %s for %04d-%02d: %d calculated, %d skipped",
		summary.RunID, year, month, len(summary.Results), len(summary.Errors))
	return summary, nil
}
