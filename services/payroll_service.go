package services

import (
	"context"
	"encoding/json"
	"time"

	"attend/config"
	"attend/constants"
	apperrors "attend/errors"
	"attend/models"
	"attend/services/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollService converts a month of attendance records into salary
// records. Calculations are idempotent upserts keyed by
// (employee, department, month, year); recalculation overwrites the
// prior figures.
type PayrollService struct {
	db     *gorm.DB
	logger logger.Logger
	cfg    config.PayrollConfig

	// now is swappable for tests; the missing-day cutoff depends on it.
	now func() time.Time
}

type PayrollServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Config config.PayrollConfig

	// Now overrides the clock, pinning the missing-day cutoff.
	Now func() time.Time
}

func NewPayrollService(opts PayrollServiceOptions) *PayrollService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	return &PayrollService{
		db:     opts.DB,
		logger: opts.Logger,
		cfg:    opts.Config,
		now:    now,
	}
}

// SalaryCalcRequest asks for one employee's salary in one month.
// DepartmentID zero means every active assignment.
type SalaryCalcRequest struct {
	EmployeeID   uint
	DepartmentID uint
	Month        int
	Year         int
	Method       string
	RunID        string
}

// Calculate computes and upserts one salary record per matching
// assignment.
func (p *PayrollService) Calculate(ctx context.Context, req SalaryCalcRequest) ([]*models.SalaryRecord, error) {
	if err := validateCalcRequest(&req); err != nil {
		return nil, err
	}

	var emp models.Employee
	err := p.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		First(&emp, req.EmployeeID).Error
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeEmployeeNotFound, "employee lookup", err)
	}

	var records []*models.SalaryRecord
	matched := false
	for i := range emp.Assignments {
		a := &emp.Assignments[i]
		if req.DepartmentID != 0 && a.DepartmentID != req.DepartmentID {
			continue
		}
		matched = true
		rec, err := p.calculateAssignment(ctx, &emp, a, req)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	if !matched {
		return nil, apperrors.NewAppError(apperrors.ErrCodeEmployeeNotFound, "no active assignment for employee", nil)
	}
	return records, nil
}

func (p *PayrollService) calculateAssignment(ctx context.Context, emp *models.Employee, a *models.DepartmentAssignment, req SalaryCalcRequest) (*models.SalaryRecord, error) {
	if a.BaseSalary <= 0 {
		return nil, apperrors.NewAppError(apperrors.ErrCodeNoBaseSalary, apperrors.ErrNoBaseSalary.Error(), nil)
	}

	monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	daysInMonth := monthEnd.Add(-time.Hour * 24).Day()

	records, err := p.monthRecords(ctx, emp.ID, a.DepartmentID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	t := tallyMonth(a, records, monthStart, daysInMonth, p.now())

	base := decimal.NewFromInt(a.BaseSalary)
	rec := &models.SalaryRecord{
		EmployeeID:   emp.ID,
		DepartmentID: a.DepartmentID,
		Month:        req.Month,
		Year:         req.Year,
		Method:       req.Method,
		RunID:        req.RunID,
		WorkingDays:  t.payableDays,
		PresentDays:  t.presentDays,
		AbsentDays:   t.absentDays,
		LateDays:     t.lateDays,
		EarlyDays:    t.earlyDays,
		HalfDays:     t.halfDays,
		LeaveDays:    t.leaveDays,
		BaseSalary:   base,
		CalculatedAt: p.now().UTC(),
	}

	switch req.Method {
	case constants.SalaryMethodWeeklyHours:
		p.applyWeeklyHours(rec, a, t, base)
	default:
		p.applyMonthly(rec, a, t, base)
	}

	if err := p.upsert(ctx, rec); err != nil {
		return nil, err
	}
	p.logger.Info("salary calculated for employee %d dept %d %04d-%02d: net %s",
		emp.ID, a.DepartmentID, req.Year, req.Month, rec.NetSalary.String())
	return rec, nil
}

// applyMonthly implements the absence-equivalent deduction model: excess
// occurrences of each infraction convert into whole absent days at the
// per-day rate, lateness and half-days per their thresholds, leaves past
// the allowance one-for-one.
func (p *PayrollService) applyMonthly(rec *models.SalaryRecord, a *models.DepartmentAssignment, t monthTally, base decimal.Decimal) {
	lateAsAbsent := thresholdDiv(t.lateDays, p.cfg.LateThreshold)
	halfAsAbsent := thresholdDiv(t.halfDays, p.cfg.HalfDayThreshold)
	earlyAsAbsent := thresholdDiv(t.earlyDays, p.cfg.EarlyThreshold)
	lateEarlyAsAbsent := thresholdDiv(t.lateEarlyDays, p.cfg.LateEarlyThreshold)

	leaveThreshold := a.LeaveThreshold
	if leaveThreshold == 0 {
		leaveThreshold = p.cfg.LeaveThreshold
	}
	excessLeaves := t.leaveDays - leaveThreshold
	if excessLeaves < 0 {
		excessLeaves = 0
	}

	totalAbsent := t.absentDays + lateAsAbsent + halfAsAbsent + earlyAsAbsent + lateEarlyAsAbsent + excessLeaves
	rec.AbsenceEquivalent = totalAbsent

	perDay := decimal.Zero
	if t.payableDays > 0 {
		perDay = base.Div(decimal.NewFromInt(int64(t.payableDays))).Floor()
	}
	perHour := decimal.Zero
	if t.dailyHours > 0 {
		perHour = perDay.Div(decimal.NewFromFloat(t.dailyHours)).Floor()
	}
	deduction := perDay.Mul(decimal.NewFromInt(int64(totalAbsent)))

	bonus := decimal.Zero
	if t.payableDays > 0 {
		percent := float64(t.presentDays) / float64(t.payableDays) * 100
		if percent >= p.cfg.PerfectAttendancePercent {
			bonus = decimal.NewFromInt(p.cfg.PerfectAttendanceBonus)
		}
	}

	overtimeAmount := perHour.Mul(decimal.NewFromFloat(t.overtimeHours)).Floor()
	offDayAmount := perDay.Mul(decimal.NewFromInt(int64(t.offDaysWorked)))
	additions := overtimeAmount.Add(offDayAmount)

	rec.PerDaySalary = perDay
	rec.PerHourSalary = perHour
	rec.Deduction = deduction
	rec.Bonus = bonus
	rec.Additions = additions
	rec.NetSalary = base.Sub(deduction).Add(bonus).Add(additions)

	rec.DeductionBreakdown = mustJSON(map[string]interface{}{
		"absentDays":        t.absentDays,
		"missingDays":       t.missingDays,
		"lateAsAbsent":      lateAsAbsent,
		"halfDayAsAbsent":   halfAsAbsent,
		"earlyAsAbsent":     earlyAsAbsent,
		"lateEarlyAsAbsent": lateEarlyAsAbsent,
		"excessLeaves":      excessLeaves,
		"perDaySalary":      perDay,
		"amount":            deduction,
	})
	rec.AdditionBreakdown = mustJSON(map[string]interface{}{
		"bonus":          bonus,
		"overtimeHours":  t.overtimeHours,
		"overtimeAmount": overtimeAmount,
		"offDaysWorked":  t.offDaysWorked,
		"offDayAmount":   offDayAmount,
	})
}

// applyWeeklyHours implements the simpler hours-based deduction model:
// hours short of the expected monthly total are deducted at the hourly
// rate.
func (p *PayrollService) applyWeeklyHours(rec *models.SalaryRecord, a *models.DepartmentAssignment, t monthTally, base decimal.Decimal) {
	expectedHours := float64(t.payableDays) * t.dailyHours
	missingHours := expectedHours - t.actualHours
	if missingHours < 0 {
		missingHours = 0
	}

	perHour := decimal.Zero
	if expectedHours > 0 {
		perHour = base.Div(decimal.NewFromFloat(expectedHours)).Floor()
	}
	deduction := perHour.Mul(decimal.NewFromFloat(missingHours)).Floor()

	rec.PerHourSalary = perHour
	rec.Deduction = deduction
	rec.Bonus = decimal.Zero
	rec.Additions = decimal.Zero
	rec.NetSalary = base.Sub(deduction)

	rec.DeductionBreakdown = mustJSON(map[string]interface{}{
		"expectedHours": expectedHours,
		"actualHours":   t.actualHours,
		"missingHours":  missingHours,
		"perHourSalary": perHour,
		"amount":        deduction,
	})
	rec.AdditionBreakdown = mustJSON(map[string]interface{}{})
}

func (p *PayrollService) upsert(ctx context.Context, rec *models.SalaryRecord) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "employee_id"}, {Name: "department_id"}, {Name: "month"}, {Name: "year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"method", "run_id", "working_days", "present_days", "absent_days",
			"late_days", "early_days", "half_days", "leave_days",
			"absence_equivalent", "base_salary", "per_day_salary",
			"per_hour_salary", "deduction", "bonus", "additions", "net_salary",
			"deduction_breakdown", "addition_breakdown", "calculated_at",
			"updated_at",
		}),
	}).Create(rec).Error
}

// monthRecords loads the month's attendance, ordered so later updates to
// the same date win during dedup.
func (p *PayrollService) monthRecords(ctx context.Context, employeeID, departmentID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := p.db.WithContext(ctx).
		Where("employee_id = ? AND department_id = ? AND date >= ? AND date < ?",
			employeeID, departmentID, from, to).
		Order("date asc, updated_at asc").
		Find(&records).Error
	return records, err
}

// monthTally is the per-assignment attendance summary payroll works
// from.
type monthTally struct {
	payableDays   int
	presentDays   int
	absentDays    int
	missingDays   int
	lateDays      int
	earlyDays     int
	lateEarlyDays int
	halfDays      int
	leaveDays     int
	overtimeHours float64
	offDaysWorked int
	actualHours   float64
	dailyHours    float64
}

// tallyMonth reduces a month of records to payroll counters. Records are
// deduplicated per calendar date (latest update wins) so a date is never
// double counted. Missing days are working days up to the cutoff with no
// record at all; for a past month the cutoff is the month end, so
// recalculating later never undercounts.
func tallyMonth(a *models.DepartmentAssignment, records []models.AttendanceRecord, monthStart time.Time, daysInMonth int, now time.Time) monthTally {
	byDate := make(map[string]*models.AttendanceRecord, len(records))
	for i := range records {
		byDate[records[i].Date.Format("2006-01-02")] = &records[i]
	}

	t := monthTally{dailyHours: a.WorkingHoursPerDay}
	if t.dailyHours <= 0 {
		sched := ResolveSchedule(a, monthStart)
		t.dailyHours = sched.DailyHours
	}

	cutoff := monthStart.AddDate(0, 1, 0)
	if today := DateOf(now); today.Before(cutoff) {
		cutoff = today
	}

	workingDays := 0
	for day := 1; day <= daysInMonth; day++ {
		date := monthStart.AddDate(0, 0, day-1)
		sched := ResolveSchedule(a, date)
		rec := byDate[date.Format("2006-01-02")]

		if sched.WeeklyOff {
			// Off days are outside the denominator, but a day actually
			// worked on one earns the per-day addition.
			if rec != nil && rec.CheckIn != nil && rec.CheckOut != nil && constants.PresentLike(rec.Status) {
				t.offDaysWorked++
			}
			continue
		}
		workingDays++

		if rec == nil {
			if date.Before(cutoff) {
				t.missingDays++
			}
			continue
		}

		switch rec.Status {
		case constants.StatusPresent:
			t.presentDays++
		case constants.StatusEarlyArrival:
			t.presentDays++
			t.earlyDays++
		case constants.StatusLate:
			t.presentDays++
			t.lateDays++
		case constants.StatusLateEarlyArrival:
			t.presentDays++
			t.lateEarlyDays++
		case constants.StatusPending:
			if rec.CheckIn != nil {
				t.presentDays++
			}
		case constants.StatusHalfDay:
			t.halfDays++
		case constants.StatusLeave:
			t.leaveDays++
		case constants.StatusAbsent, constants.StatusMissing:
			t.absentDays++
		}

		if rec.WorkingHours > 0 {
			t.actualHours += rec.WorkingHours
			if over := rec.WorkingHours - t.dailyHours; over > 0 && constants.PresentLike(rec.Status) {
				t.overtimeHours += over
			}
		}
	}

	// Leave days come out of the payable denominator.
	t.payableDays = workingDays - t.leaveDays
	if t.payableDays < 0 {
		t.payableDays = 0
	}
	t.absentDays += t.missingDays
	return t
}

func thresholdDiv(count, threshold int) int {
	if threshold <= 0 {
		return 0
	}
	return count / threshold
}

func validateCalcRequest(req *SalaryCalcRequest) error {
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		return apperrors.NewAppError(apperrors.ErrCodeInvalidPeriod, "month/year out of range", nil)
	}
	switch req.Method {
	case "":
		req.Method = constants.SalaryMethodMonthly
	case constants.SalaryMethodMonthly, constants.SalaryMethodWeeklyHours:
	default:
		return apperrors.NewAppError(apperrors.ErrCodeInvalidMethod, "unknown salary method "+req.Method, nil)
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
