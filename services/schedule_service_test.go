package services_test

import (
	"testing"
	"time"

	"attend/models"
	"attend/services"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func TestResolveSchedule_Defaults(t *testing.T) {
	// Wednesday with no assignment at all.
	day := at(2026, time.March, 4, 0, 0)
	sched := services.ResolveSchedule(nil, day)

	assert.Equal(t, at(2026, time.March, 4, 9, 0), sched.CheckIn)
	assert.Equal(t, at(2026, time.March, 4, 17, 0), sched.CheckOut)
	assert.Equal(t, 15*time.Minute, sched.CheckInLeverage)
	assert.Equal(t, 10*time.Minute, sched.CheckOutLeverage)
	assert.InDelta(t, 8.0, sched.DailyHours, 0.001)
	assert.False(t, sched.WeeklyOff)
}

func TestResolveSchedule_DefaultWeekend(t *testing.T) {
	saturday := at(2026, time.March, 7, 0, 0)
	sched := services.ResolveSchedule(nil, saturday)
	assert.True(t, sched.WeeklyOff)
}

func TestResolveSchedule_AssignmentTimesWin(t *testing.T) {
	a := &models.DepartmentAssignment{
		CheckInTime:        "07:30",
		CheckOutTime:       "15:30",
		CheckInLeverageMin: intp(5),
	}
	day := at(2026, time.March, 4, 0, 0)
	sched := services.ResolveSchedule(a, day)

	assert.Equal(t, at(2026, time.March, 4, 7, 30), sched.CheckIn)
	assert.Equal(t, at(2026, time.March, 4, 15, 30), sched.CheckOut)
	assert.Equal(t, 5*time.Minute, sched.CheckInLeverage)
	// Check-out leverage untouched, so the global default applies.
	assert.Equal(t, 10*time.Minute, sched.CheckOutLeverage)
}

func TestResolveSchedule_DepartmentLeverageFallback(t *testing.T) {
	a := &models.DepartmentAssignment{
		Department: &models.Department{
			CheckInLeverageMin:  intp(30),
			CheckOutLeverageMin: intp(20),
		},
	}
	sched := services.ResolveSchedule(a, at(2026, time.March, 4, 0, 0))
	assert.Equal(t, 30*time.Minute, sched.CheckInLeverage)
	assert.Equal(t, 20*time.Minute, sched.CheckOutLeverage)
}

func TestResolveSchedule_WeekdayOverride(t *testing.T) {
	a := &models.DepartmentAssignment{
		CheckInTime:  "09:00",
		CheckOutTime: "17:00",
		Overrides: []models.WeekdayOverride{
			{Weekday: int(time.Friday), CheckInTime: "08:00", CheckOutTime: "12:00"},
		},
	}

	friday := at(2026, time.March, 6, 0, 0)
	sched := services.ResolveSchedule(a, friday)
	assert.Equal(t, at(2026, time.March, 6, 8, 0), sched.CheckIn)
	assert.Equal(t, at(2026, time.March, 6, 12, 0), sched.CheckOut)
	assert.InDelta(t, 4.0, sched.DailyHours, 0.001)

	// The override binds only to its weekday.
	thursday := at(2026, time.March, 5, 0, 0)
	sched = services.ResolveSchedule(a, thursday)
	assert.Equal(t, at(2026, time.March, 5, 9, 0), sched.CheckIn)
}

func TestResolveSchedule_CustomOffDays(t *testing.T) {
	a := &models.DepartmentAssignment{
		WeeklyOffDays: []int64{int64(time.Monday)},
	}
	monday := at(2026, time.March, 2, 0, 0)
	saturday := at(2026, time.March, 7, 0, 0)

	assert.True(t, services.ResolveSchedule(a, monday).WeeklyOff)
	// Explicit off days replace the default weekend entirely.
	assert.False(t, services.ResolveSchedule(a, saturday).WeeklyOff)
}

func TestResolveSchedule_MalformedClockFallsBack(t *testing.T) {
	a := &models.DepartmentAssignment{CheckInTime: "9am"}
	sched := services.ResolveSchedule(a, at(2026, time.March, 4, 0, 0))
	assert.Equal(t, at(2026, time.March, 4, 9, 0), sched.CheckIn)
}

func TestDateOf_NormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 02:30 on March 5 in UTC+7 is still March 4 in UTC.
	ts := time.Date(2026, time.March, 5, 2, 30, 0, 0, loc)
	assert.Equal(t, at(2026, time.March, 4, 0, 0), services.DateOf(ts))
}
