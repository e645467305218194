package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"attend/constants"
	"attend/models"
	"attend/services/logger"

	"gorm.io/gorm"
)

// ShiftSplitter attributes punches to per-department attendance records.
// An employee with several active assignments has each punch fanned out
// across the assignments whose shift windows it falls into; the
// single-assignment case is the N=1 instance of the same path with no
// window clipping. Shift windows may overlap; a punch landing in the
// overlap is applied to every matching record.
type ShiftSplitter struct {
	db             *gorm.DB
	logger         logger.Logger
	rapidThreshold time.Duration
}

type ShiftSplitterOptions struct {
	DB             *gorm.DB
	Logger         logger.Logger
	RapidThreshold time.Duration
}

func NewShiftSplitter(opts ShiftSplitterOptions) *ShiftSplitter {
	threshold := opts.RapidThreshold
	if threshold == 0 {
		threshold = constants.DefaultRapidPunchThreshold
	}
	return &ShiftSplitter{
		db:             opts.DB,
		logger:         opts.Logger,
		rapidThreshold: threshold,
	}
}

// ApplyPunch applies a single punch event to the employee's attendance
// records for the day. The first punch of a day opens a record with a
// check-in; a later punch closes it as a check-out unless it lands
// inside the rapid-punch window; extra punches on a complete record are
// discarded.
func (s *ShiftSplitter) ApplyPunch(ctx context.Context, emp *models.Employee, punch time.Time, deviceID string) error {
	targets := s.targetsFor(emp, punch)
	for _, t := range targets {
		if err := s.applyPunchTo(ctx, emp.ID, t, punch, deviceID); err != nil {
			return err
		}
	}
	return nil
}

// ApplySpan applies a check-in/check-out pair (a manual correction) to
// the employee's records, clipping the pair into each assignment's shift
// window. Merge policy: an empty check-in is filled but an existing one
// is kept; the latest check-out always wins.
func (s *ShiftSplitter) ApplySpan(ctx context.Context, emp *models.Employee, in, out *time.Time, deviceID string, modifiedBy *uint) error {
	var at time.Time
	switch {
	case in != nil:
		at = *in
	case out != nil:
		at = *out
	default:
		return nil
	}

	targets := s.targetsFor(emp, at)
	for _, t := range targets {
		clippedIn, clippedOut := in, out
		if t.clip {
			clippedIn = clipCheckIn(in, t.window)
			clippedOut = clipCheckOut(out, t.window)
			if clippedIn == nil && clippedOut == nil {
				continue
			}
		}
		if err := s.mergeSpan(ctx, emp.ID, t, clippedIn, clippedOut, deviceID, modifiedBy); err != nil {
			return err
		}
	}
	return nil
}

// target is one department-day record a punch may land in.
type target struct {
	assignment *models.DepartmentAssignment
	schedule   *ResolvedSchedule
	window     shiftWindow
	clip       bool
	date       time.Time
}

type shiftWindow struct {
	start time.Time
	end   time.Time
}

// targetsFor resolves which assignments receive a punch at the given
// time. With zero assignments the punch still produces a record, just
// one with no department and no schedule.
func (s *ShiftSplitter) targetsFor(emp *models.Employee, at time.Time) []target {
	date := DateOf(at)

	var active []*models.DepartmentAssignment
	for i := range emp.Assignments {
		if emp.Assignments[i].Active {
			active = append(active, &emp.Assignments[i])
		}
	}

	if len(active) == 0 {
		return []target{{date: date}}
	}
	if len(active) == 1 {
		sched := ResolveSchedule(active[0], date)
		return []target{{assignment: active[0], schedule: &sched, date: date}}
	}

	// Multi-department: keep assignments working today, windowed and
	// sorted by shift start.
	var today []target
	for _, a := range active {
		sched := ResolveSchedule(a, date)
		if sched.WeeklyOff {
			continue
		}
		today = append(today, target{
			assignment: a,
			schedule:   &sched,
			window:     shiftWindow{start: sched.CheckIn, end: sched.CheckOut},
			clip:       true,
			date:       date,
		})
	}
	if len(today) == 0 {
		// All shifts off today; fall back to the primary assignment as
		// a single unclipped record.
		fallback := active[0]
		for _, a := range active {
			if a.IsPrimary {
				fallback = a
				break
			}
		}
		sched := ResolveSchedule(fallback, date)
		return []target{{assignment: fallback, schedule: &sched, date: date}}
	}
	sort.Slice(today, func(i, j int) bool {
		return today[i].window.start.Before(today[j].window.start)
	})
	return today
}

func (s *ShiftSplitter) applyPunchTo(ctx context.Context, employeeID uint, t target, punch time.Time, deviceID string) error {
	rec, err := s.findRecord(ctx, employeeID, t.departmentID(), t.date)
	if err != nil {
		return err
	}

	switch {
	case rec == nil || rec.CheckIn == nil:
		in := punch
		if t.clip {
			if punch.After(t.window.end) {
				// Entirely past this shift; not a check-in for it.
				return nil
			}
			if punch.Before(t.window.start) {
				in = t.window.start
			}
		}
		if rec == nil {
			return s.createRecord(ctx, employeeID, t, &in, nil, deviceID, nil)
		}
		rec.CheckIn = &in
		rec.DeviceID = deviceID
		if !rec.IsManualEntry {
			rec.Status = constants.StatusPending
		}
		EvaluateRecord(rec, t.schedule)
		return s.db.WithContext(ctx).Save(rec).Error

	case rec.CheckOut == nil:
		if punch.Sub(*rec.CheckIn) < s.rapidThreshold {
			s.debugf("discarding rapid punch for employee %d at %s", employeeID, punch.Format(time.RFC3339))
			return nil
		}
		out := punch
		if t.clip {
			if punch.Before(t.window.start) {
				return nil
			}
			if punch.After(t.window.end) {
				out = t.window.end
			}
		}
		rec.CheckOut = &out
		EvaluateRecord(rec, t.schedule)
		return s.db.WithContext(ctx).Save(rec).Error

	default:
		// Both punches recorded; extra scans are ignored.
		s.debugf("discarding extra punch for employee %d at %s", employeeID, punch.Format(time.RFC3339))
		return nil
	}
}

func (s *ShiftSplitter) mergeSpan(ctx context.Context, employeeID uint, t target, in, out *time.Time, deviceID string, modifiedBy *uint) error {
	rec, err := s.findRecord(ctx, employeeID, t.departmentID(), t.date)
	if err != nil {
		return err
	}
	if rec == nil {
		return s.createRecord(ctx, employeeID, t, in, out, deviceID, modifiedBy)
	}

	if rec.CheckIn == nil && in != nil {
		rec.CheckIn = in
	}
	if out != nil && (rec.CheckOut == nil || out.After(*rec.CheckOut)) {
		rec.CheckOut = out
	}
	rec.ModifiedBy = modifiedBy
	EvaluateRecord(rec, t.schedule)
	return s.db.WithContext(ctx).Save(rec).Error
}

// findRecord returns the day's record or nil when none exists yet.
func (s *ShiftSplitter) findRecord(ctx context.Context, employeeID, departmentID uint, date time.Time) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND department_id = ? AND date = ?", employeeID, departmentID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// createRecord inserts a fresh record. A uniqueness-key conflict means a
// concurrent punch created it first; the create is retried as an update.
func (s *ShiftSplitter) createRecord(ctx context.Context, employeeID uint, t target, in, out *time.Time, deviceID string, modifiedBy *uint) error {
	rec := &models.AttendanceRecord{
		EmployeeID:   employeeID,
		DepartmentID: t.departmentID(),
		Date:         t.date,
		CheckIn:      in,
		CheckOut:     out,
		Status:       constants.StatusPending,
		DeviceID:     deviceID,
		ModifiedBy:   modifiedBy,
	}
	EvaluateRecord(rec, t.schedule)
	err := s.db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return nil
	}
	if !IsDuplicateKeyError(err) {
		return err
	}
	s.debugf("concurrent create for employee %d on %s, merging instead", employeeID, t.date.Format("2006-01-02"))
	return s.mergeSpan(ctx, employeeID, t, in, out, deviceID, modifiedBy)
}

func (t target) departmentID() uint {
	if t.assignment == nil {
		return 0
	}
	return t.assignment.DepartmentID
}

func (s *ShiftSplitter) debugf(format string, v ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(format, v...)
	}
}

func clipCheckIn(in *time.Time, w shiftWindow) *time.Time {
	if in == nil || in.After(w.end) {
		return nil
	}
	if in.Before(w.start) {
		clipped := w.start
		return &clipped
	}
	return in
}

func clipCheckOut(out *time.Time, w shiftWindow) *time.Time {
	if out == nil || out.Before(w.start) {
		return nil
	}
	if out.After(w.end) {
		clipped := w.end
		return &clipped
	}
	return out
}

// IsDuplicateKeyError reports whether err is a uniqueness-constraint
// violation, across the postgres and sqlite drivers.
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
