package controllers

import (
	"errors"

	"attend/dto"
	apperrors "attend/errors"
	"attend/models"
	"attend/response"
	"attend/services"
	"attend/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SalaryController struct {
	db      *gorm.DB
	payroll *services.PayrollService
}

func NewSalaryController(db *gorm.DB, payroll *services.PayrollService) *SalaryController {
	return &SalaryController{db: db, payroll: payroll}
}

// CalculateSalary recomputes one employee's salary for a month. Running
// it twice for the same period overwrites the earlier figures.
func (sc *SalaryController) CalculateSalary(c *gin.Context) {
	var req dto.SalaryCalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	records, err := sc.payroll.Calculate(c.Request.Context(), services.SalaryCalcRequest{
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		Month:        req.Month,
		Year:         req.Year,
		Method:       req.Method,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case apperrors.ErrCodeEmployeeNotFound:
				response.NotFound(c)
			case apperrors.ErrCodeNoBaseSalary, apperrors.ErrCodeInvalidPeriod, apperrors.ErrCodeInvalidMethod:
				response.BadRequest(c, appErr.Message)
			default:
				response.ServerError(c)
			}
			return
		}
		response.ServerError(c)
		return
	}

	result := make([]dto.SalaryResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, toSalaryResponse(rec))
	}
	response.SuccessWithTotal(c, result, len(result))
}

// CalculateSalaryBatch runs payroll for the whole company. Per-employee
// failures are reported in the summary, not as an HTTP error.
func (sc *SalaryController) CalculateSalaryBatch(c *gin.Context) {
	var req dto.BatchCalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	summary, err := sc.payroll.CalculateBatch(c.Request.Context(), req.Month, req.Year, req.Method)
	if err != nil {
		response.ServerError(c)
		return
	}
	response.Success(c, summary)
}

// GetSalaryHistory lists an employee's computed salaries, newest first.
func (sc *SalaryController) GetSalaryHistory(c *gin.Context) {
	var query dto.SalaryHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "employeeId is required")
		return
	}

	tx := sc.db.WithContext(c.Request.Context()).
		Preload("Employee").
		Where("employee_id = ?", query.EmployeeID)
	if query.Year != 0 {
		tx = tx.Where("year = ?", query.Year)
	}

	var records []models.SalaryRecord
	if err := tx.Order("year desc, month desc, department_id asc").Find(&records).Error; err != nil {
		response.ServerError(c)
		return
	}

	result := make([]dto.SalaryResponse, 0, len(records))
	for i := range records {
		result = append(result, toSalaryResponse(&records[i]))
	}
	response.SuccessWithTotal(c, result, len(result))
}

func toSalaryResponse(rec *models.SalaryRecord) dto.SalaryResponse {
	var emp *types.EmployeeSummary
	if rec.Employee != nil {
		emp = &types.EmployeeSummary{
			ID:           rec.Employee.ID,
			Name:         rec.Employee.Name,
			Email:        rec.Employee.Email,
			DeviceUserID: rec.Employee.DeviceUserID,
		}
	}
	return dto.SalaryResponse{
		ID:                 rec.ID,
		EmployeeID:         rec.EmployeeID,
		Employee:           emp,
		DepartmentID:       rec.DepartmentID,
		Month:              rec.Month,
		Year:               rec.Year,
		Method:             rec.Method,
		WorkingDays:        rec.WorkingDays,
		PresentDays:        rec.PresentDays,
		AbsentDays:         rec.AbsentDays,
		LateDays:           rec.LateDays,
		HalfDays:           rec.HalfDays,
		LeaveDays:          rec.LeaveDays,
		AbsenceEquivalent:  rec.AbsenceEquivalent,
		BaseSalary:         rec.BaseSalary,
		PerDaySalary:       rec.PerDaySalary,
		Deduction:          rec.Deduction,
		Bonus:              rec.Bonus,
		Additions:          rec.Additions,
		NetSalary:          rec.NetSalary,
		DeductionBreakdown: rec.DeductionBreakdown,
		AdditionBreakdown:  rec.AdditionBreakdown,
	}
}
