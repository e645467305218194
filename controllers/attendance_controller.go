package controllers

import (
	"errors"
	"fmt"
	"time"

	"attend/builders"
	"attend/commands"
	"attend/constants"
	"attend/dto"
	"attend/models"
	"attend/response"
	"attend/services"
	"attend/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const attendanceCacheTTL = 2 * time.Minute

type AttendanceController struct {
	db       *gorm.DB
	rdb      *redis.Client
	sweep    *services.SweepService
	splitter *services.ShiftSplitter
}

func NewAttendanceController(db *gorm.DB, rdb *redis.Client, sweep *services.SweepService, splitter *services.ShiftSplitter) *AttendanceController {
	return &AttendanceController{
		db:       db,
		rdb:      rdb,
		sweep:    sweep,
		splitter: splitter,
	}
}

// GetAttendance lists attendance records for a date range. Stale pending
// records are closed out as missing before the query runs, so listings
// never show yesterday's half-punched days as pending.
func (ac *AttendanceController) GetAttendance(c *gin.Context) {
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 31
	}

	ctx := c.Request.Context()
	if _, err := ac.sweep.CloseStalePending(ctx); err != nil {
		response.ServerError(c)
		return
	}

	cacheKey := fmt.Sprintf("attendance:%d:%d:%s:%s:%s:%d:%d",
		query.EmployeeID, query.DepartmentID, query.From, query.To, query.Status, query.Page, query.Limit)
	if ac.rdb != nil {
		var cached dto.PaginatedResponse[[]dto.AttendanceResponse]
		if err := services.GetFromRedis(ctx, ac.rdb, cacheKey, &cached); err == nil && cached.Data != nil {
			response.SuccessWithPagination(c, cached.Data, cached.Pagination.Page, cached.Pagination.Limit, cached.Pagination.Total)
			return
		}
	}

	tx := ac.db.WithContext(ctx).Model(&models.AttendanceRecord{}).Preload("Employee")
	if query.EmployeeID != 0 {
		tx = tx.Where("employee_id = ?", query.EmployeeID)
	}
	if query.DepartmentID != 0 {
		tx = tx.Where("department_id = ?", query.DepartmentID)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if query.From != "" {
		if from, err := time.ParseInLocation("2006-01-02", query.From, time.UTC); err == nil {
			tx = tx.Where("date >= ?", from)
		}
	}
	if query.To != "" {
		if to, err := time.ParseInLocation("2006-01-02", query.To, time.UTC); err == nil {
			tx = tx.Where("date <= ?", to)
		}
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		response.ServerError(c)
		return
	}

	var records []models.AttendanceRecord
	err := tx.Order("date desc").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&records).Error
	if err != nil {
		response.ServerError(c)
		return
	}

	result := make([]dto.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		name := ""
		if rec.Employee != nil {
			name = rec.Employee.Name
		}
		result = append(result, dto.AttendanceResponse{
			ID:            rec.ID,
			EmployeeID:    rec.EmployeeID,
			EmployeeName:  name,
			DepartmentID:  rec.DepartmentID,
			Date:          rec.Date,
			CheckIn:       rec.CheckIn,
			CheckOut:      rec.CheckOut,
			Status:        rec.Status,
			WorkingHours:  rec.WorkingHours,
			IsManualEntry: rec.IsManualEntry,
			DeviceID:      rec.DeviceID,
			Remarks:       rec.Remarks,
		})
	}

	if ac.rdb != nil {
		services.SetToRedis(ctx, ac.rdb, cacheKey, dto.PaginatedResponse[[]dto.AttendanceResponse]{
			Data: result,
			Pagination: response.Pagination{
				Page:  query.Page,
				Limit: query.Limit,
				Total: int(total),
			},
		}, attendanceCacheTTL)
	}
	response.SuccessWithPagination(c, result, query.Page, query.Limit, int(total))
}

// CreateManualAttendance creates or corrects a record by hand. The
// endpoint is gated by the manual_attendance_enabled settings flag.
// With a department given the correction targets that record directly;
// without one the pair is split across the employee's shift windows.
func (ac *AttendanceController) CreateManualAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	if !services.GetSettingFlag(ctx, ac.db, ac.rdb, models.SettingManualAttendance, true) {
		response.Forbidden(c)
		return
	}

	var req dto.ManualAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	date, checkIn, checkOut, err := validator.ValidateManualEntry(&req)
	if err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	var modifiedBy *uint
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			modifiedBy = &id
		}
	}

	var emp models.Employee
	err = ac.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		First(&emp, req.EmployeeID).Error
	if err != nil {
		response.NotFound(c)
		return
	}

	if req.DepartmentID == 0 {
		if err := ac.splitter.ApplySpan(ctx, &emp, checkIn, checkOut, "", modifiedBy); err != nil {
			response.ServerError(c)
			return
		}
	} else if err := ac.applyDirect(c, &emp, req, date, checkIn, checkOut, modifiedBy); err != nil {
		return
	}

	response.Success(c, gin.H{
		"employeeId": req.EmployeeID,
		"date":       date.Format("2006-01-02"),
	})
}

// applyDirect writes the correction onto one department's record,
// bypassing window clipping. It writes the error response itself.
func (ac *AttendanceController) applyDirect(c *gin.Context, emp *models.Employee, req dto.ManualAttendanceRequest, date time.Time, checkIn, checkOut *time.Time, modifiedBy *uint) error {
	ctx := c.Request.Context()

	var assignment *models.DepartmentAssignment
	for i := range emp.Assignments {
		if emp.Assignments[i].DepartmentID == req.DepartmentID {
			assignment = &emp.Assignments[i]
			break
		}
	}

	var rec models.AttendanceRecord
	err := ac.db.WithContext(ctx).
		Where("employee_id = ? AND department_id = ? AND date = ?", emp.ID, req.DepartmentID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		builder := builders.NewAttendanceBuilder().
			WithEmployee(emp.ID).
			WithDepartment(req.DepartmentID).
			WithDate(date).
			WithCheckIn(checkIn).
			WithCheckOut(checkOut).
			WithRemarks(req.Remarks)
		if modifiedBy != nil {
			builder.ManualBy(*modifiedBy)
		}
		if req.Status != "" {
			builder.WithStatus(req.Status)
		}
		fresh := builder.Build()
		fresh.IsManualEntry = true
		evaluateManual(fresh, assignment, date)
		if err := commands.NewCreateAttendanceCommand(fresh, ac.db.WithContext(ctx)).Execute(); err != nil {
			if services.IsDuplicateKeyError(err) {
				response.Conflict(c)
				return err
			}
			response.ServerError(c)
			return err
		}
		return nil
	}
	if err != nil {
		response.ServerError(c)
		return err
	}

	if checkIn != nil {
		rec.CheckIn = checkIn
	}
	if checkOut != nil {
		rec.CheckOut = checkOut
	}
	if req.Status != "" {
		rec.Status = req.Status
	} else if !rec.IsManualEntry {
		rec.Status = constants.StatusPending
	}
	if req.Remarks != "" {
		rec.Remarks = req.Remarks
	}
	rec.IsManualEntry = true
	rec.ModifiedBy = modifiedBy
	evaluateManual(&rec, assignment, date)
	if err := commands.NewUpdateAttendanceCommand(&rec, ac.db.WithContext(ctx)).Execute(); err != nil {
		response.ServerError(c)
		return err
	}
	return nil
}

func evaluateManual(rec *models.AttendanceRecord, assignment *models.DepartmentAssignment, date time.Time) {
	if assignment == nil {
		services.EvaluateRecord(rec, nil)
		return
	}
	sched := services.ResolveSchedule(assignment, date)
	services.EvaluateRecord(rec, &sched)
}
