package services

import (
	"context"
	"time"

	"attend/builders"
	"attend/constants"
	"attend/models"
	"attend/services/logger"

	"gorm.io/gorm"
)

// SweepService runs the two reconciliation passes: closing stale pending
// records and manufacturing absent records for employees who never
// punched. Both passes tolerate re-runs.
type SweepService struct {
	db     *gorm.DB
	logger logger.Logger
}

type SweepServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewSweepService(opts SweepServiceOptions) *SweepService {
	return &SweepService{
		db:     opts.DB,
		logger: opts.Logger,
	}
}

// CloseStalePending marks every pending record from a prior day as
// missing. A pure bulk update; runs on every attendance list read and
// once daily from cron.
func (s *SweepService) CloseStalePending(ctx context.Context) (int64, error) {
	today := DateOf(time.Now())
	res := s.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("status = ? AND date < ?", constants.StatusPending, today).
		Update("status", constants.StatusMissing)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info("closed %d stale pending records as missing", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// MarkAbsentees creates an absent record for every active, non-exempt
// employee with no attendance record on the given working day. Employees
// who already have a record for an assignment are skipped, so the pass
// is idempotent.
func (s *SweepService) MarkAbsentees(ctx context.Context, date time.Time) (int, error) {
	day := DateOf(date)

	var employees []models.Employee
	err := s.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		Where("status = ?", constants.EmployeeStatusActive).
		Find(&employees).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range employees {
		emp := &employees[i]
		if constants.IsAttendanceExempt(emp.Role) {
			continue
		}
		for j := range emp.Assignments {
			a := &emp.Assignments[j]
			sched := ResolveSchedule(a, day)
			if sched.WeeklyOff {
				continue
			}

			var count int64
			err := s.db.WithContext(ctx).
				Model(&models.AttendanceRecord{}).
				Where("employee_id = ? AND department_id = ? AND date = ?", emp.ID, a.DepartmentID, day).
				Count(&count).Error
			if err != nil {
				return created, err
			}
			if count > 0 {
				continue
			}

			rec := builders.NewAttendanceBuilder().
				WithEmployee(emp.ID).
				WithDepartment(a.DepartmentID).
				WithDate(day).
				WithStatus(constants.StatusAbsent).
				WithRemarks("Auto-marked absent: no punch recorded").
				Build()
			if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
				if IsDuplicateKeyError(err) {
					// A concurrent sweep or late punch beat us to it.
					continue
				}
				return created, err
			}
			created++
		}
	}
	if created > 0 {
		s.logger.Info("absentee sweep created %d absent records for %s", created, day.Format("2006-01-02"))
	}
	return created, nil
}
