package services_test

import (
	"context"
	"testing"
	"time"

	"attend/constants"
	"attend/models"
	"attend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSplitter(db *gorm.DB) *services.ShiftSplitter {
	return services.NewShiftSplitter(services.ShiftSplitterOptions{
		DB:     db,
		Logger: testLogger(),
	})
}

func getRecord(t *testing.T, db *gorm.DB, empID, deptID uint, date time.Time) *models.AttendanceRecord {
	t.Helper()
	var rec models.AttendanceRecord
	err := db.Where("employee_id = ? AND department_id = ? AND date = ?", empID, deptID, date).
		First(&rec).Error
	require.NoError(t, err)
	return &rec
}

func TestShiftSplitter_SingleAssignmentPunchPair(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "101")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)
	loaded := loadEmployee(t, db, emp.ID)

	day := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 8, 58), "dev-1"))
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 17, 2), "dev-1"))

	rec := getRecord(t, db, emp.ID, dept.ID, day)
	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	// Single assignment: punches land unclipped.
	assert.Equal(t, at(2026, time.March, 4, 8, 58), rec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 17, 2), rec.CheckOut.UTC())
	assert.Equal(t, constants.StatusPresent, rec.Status)
}

func TestShiftSplitter_RapidPunchDiscarded(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "102")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)
	loaded := loadEmployee(t, db, emp.ID)

	day := at(2026, time.March, 4, 0, 0)
	checkIn := at(2026, time.March, 4, 9, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, checkIn, "dev-1"))

	// 90 minutes later: inside the 3 hour rapid window, discarded.
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, checkIn.Add(90*time.Minute), "dev-1"))
	rec := getRecord(t, db, emp.ID, dept.ID, day)
	assert.Nil(t, rec.CheckOut)
	assert.Equal(t, constants.StatusPending, rec.Status)

	// 4 hours later: past the window, accepted as check-out.
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, checkIn.Add(4*time.Hour), "dev-1"))
	rec = getRecord(t, db, emp.ID, dept.ID, day)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, checkIn.Add(4*time.Hour), rec.CheckOut.UTC())
}

func TestShiftSplitter_ExtraPunchIgnored(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "103")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)
	loaded := loadEmployee(t, db, emp.ID)

	day := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 9, 0), "dev-1"))
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 17, 0), "dev-1"))
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 18, 30), "dev-1"))

	rec := getRecord(t, db, emp.ID, dept.ID, day)
	assert.Equal(t, at(2026, time.March, 4, 17, 0), rec.CheckOut.UTC())
}

func TestShiftSplitter_TwoDepartmentsClipWindows(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "104")
	morning := createDepartment(t, db, "Morning Ops")
	evening := createDepartment(t, db, "Evening Ops")
	createAssignment(t, db, emp, morning, func(a *models.DepartmentAssignment) {
		a.CheckInTime = "08:00"
		a.CheckOutTime = "12:00"
		a.IsPrimary = true
	})
	createAssignment(t, db, emp, evening, func(a *models.DepartmentAssignment) {
		a.CheckInTime = "13:00"
		a.CheckOutTime = "17:00"
	})
	loaded := loadEmployee(t, db, emp.ID)
	require.Len(t, loaded.Assignments, 2)

	day := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 8, 5), "dev-1"))
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 16, 55), "dev-1"))

	// Morning shift: in at 08:05, out clipped to the 12:00 window end.
	morningRec := getRecord(t, db, emp.ID, morning.ID, day)
	require.NotNil(t, morningRec.CheckIn)
	require.NotNil(t, morningRec.CheckOut)
	assert.Equal(t, at(2026, time.March, 4, 8, 5), morningRec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 12, 0), morningRec.CheckOut.UTC())

	// Evening shift: in snapped to the 13:00 window start, out at 16:55.
	eveningRec := getRecord(t, db, emp.ID, evening.ID, day)
	require.NotNil(t, eveningRec.CheckIn)
	require.NotNil(t, eveningRec.CheckOut)
	assert.Equal(t, at(2026, time.March, 4, 13, 0), eveningRec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 16, 55), eveningRec.CheckOut.UTC())
}

func TestShiftSplitter_OffShiftExcludedFromSplit(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "105")
	weekday := createDepartment(t, db, "Weekday Ops")
	weekend := createDepartment(t, db, "Weekend Ops")
	createAssignment(t, db, emp, weekday, func(a *models.DepartmentAssignment) {
		a.CheckInTime = "09:00"
		a.CheckOutTime = "17:00"
	})
	createAssignment(t, db, emp, weekend, func(a *models.DepartmentAssignment) {
		// Works only on weekends; off every weekday.
		a.WeeklyOffDays = []int64{1, 2, 3, 4, 5}
	})
	loaded := loadEmployee(t, db, emp.ID)

	wednesday := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 9, 0), "dev-1"))

	getRecord(t, db, emp.ID, weekday.ID, wednesday)
	var count int64
	db.Model(&models.AttendanceRecord{}).
		Where("employee_id = ? AND department_id = ?", emp.ID, weekend.ID).
		Count(&count)
	assert.Zero(t, count)
}

func TestShiftSplitter_NoAssignmentStillRecords(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "106")
	loaded := loadEmployee(t, db, emp.ID)
	require.Empty(t, loaded.Assignments)

	day := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 9, 0), "dev-1"))

	rec := getRecord(t, db, emp.ID, 0, day)
	require.NotNil(t, rec.CheckIn)
	assert.Equal(t, constants.StatusPending, rec.Status)
}

func TestShiftSplitter_ApplySpanSplitsManualPair(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "107")
	morning := createDepartment(t, db, "Morning Ops")
	evening := createDepartment(t, db, "Evening Ops")
	createAssignment(t, db, emp, morning, func(a *models.DepartmentAssignment) {
		a.CheckInTime = "08:00"
		a.CheckOutTime = "12:00"
	})
	createAssignment(t, db, emp, evening, func(a *models.DepartmentAssignment) {
		a.CheckInTime = "13:00"
		a.CheckOutTime = "17:00"
	})
	loaded := loadEmployee(t, db, emp.ID)

	day := at(2026, time.March, 4, 0, 0)
	admin := uint(99)
	in := at(2026, time.March, 4, 7, 30)
	out := at(2026, time.March, 4, 18, 0)
	require.NoError(t, splitter.ApplySpan(ctx, loaded, &in, &out, "", &admin))

	morningRec := getRecord(t, db, emp.ID, morning.ID, day)
	assert.Equal(t, at(2026, time.March, 4, 8, 0), morningRec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 12, 0), morningRec.CheckOut.UTC())
	require.NotNil(t, morningRec.ModifiedBy)
	assert.Equal(t, admin, *morningRec.ModifiedBy)

	eveningRec := getRecord(t, db, emp.ID, evening.ID, day)
	assert.Equal(t, at(2026, time.March, 4, 13, 0), eveningRec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 17, 0), eveningRec.CheckOut.UTC())
}

func TestShiftSplitter_MergeSpanKeepsCheckInExtendsCheckOut(t *testing.T) {
	db := newTestDB(t)
	splitter := newSplitter(db)
	ctx := context.Background()

	emp := createEmployee(t, db, "108")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)
	loaded := loadEmployee(t, db, emp.ID)

	day := at(2026, time.March, 4, 0, 0)
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 9, 5), "dev-1"))
	require.NoError(t, splitter.ApplyPunch(ctx, loaded, at(2026, time.March, 4, 16, 0), "dev-1"))

	in := at(2026, time.March, 4, 8, 0)
	out := at(2026, time.March, 4, 17, 0)
	require.NoError(t, splitter.ApplySpan(ctx, loaded, &in, &out, "", nil))

	rec := getRecord(t, db, emp.ID, dept.ID, day)
	// Existing check-in is kept; the later check-out wins.
	assert.Equal(t, at(2026, time.March, 4, 9, 5), rec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 17, 0), rec.CheckOut.UTC())
}
