package services

import (
	"strconv"
	"strings"
	"time"

	"attend/constants"
	"attend/models"
)

// ResolvedSchedule is an assignment's schedule materialized onto one
// calendar day.
type ResolvedSchedule struct {
	CheckIn          time.Time
	CheckOut         time.Time
	CheckInLeverage  time.Duration
	CheckOutLeverage time.Duration
	DailyHours       float64
	WeeklyOff        bool
}

// ResolveSchedule returns the applicable schedule for one assignment on
// one day. Resolution order: weekday override on the assignment, then
// assignment defaults, then department leverage defaults, then the
// global constants. There is no error path; missing data falls back to
// the documented defaults.
func ResolveSchedule(a *models.DepartmentAssignment, date time.Time) ResolvedSchedule {
	day := DateOf(date)
	weekday := day.Weekday()

	sched := ResolvedSchedule{
		CheckInLeverage:  time.Duration(constants.DefaultCheckInLeverageMin) * time.Minute,
		CheckOutLeverage: time.Duration(constants.DefaultCheckOutLeverageMin) * time.Minute,
		DailyHours:       constants.DefaultDailyHours,
	}

	inClock, outClock := constants.DefaultCheckInTime, constants.DefaultCheckOutTime

	if a != nil {
		if a.CheckInTime != "" {
			inClock = a.CheckInTime
		}
		if a.CheckOutTime != "" {
			outClock = a.CheckOutTime
		}
		if ov := a.OverrideFor(weekday); ov != nil {
			if ov.CheckInTime != "" {
				inClock = ov.CheckInTime
			}
			if ov.CheckOutTime != "" {
				outClock = ov.CheckOutTime
			}
		}

		if a.CheckInLeverageMin != nil {
			sched.CheckInLeverage = time.Duration(*a.CheckInLeverageMin) * time.Minute
		} else if a.Department != nil && a.Department.CheckInLeverageMin != nil {
			sched.CheckInLeverage = time.Duration(*a.Department.CheckInLeverageMin) * time.Minute
		}
		if a.CheckOutLeverageMin != nil {
			sched.CheckOutLeverage = time.Duration(*a.CheckOutLeverageMin) * time.Minute
		} else if a.Department != nil && a.Department.CheckOutLeverageMin != nil {
			sched.CheckOutLeverage = time.Duration(*a.Department.CheckOutLeverageMin) * time.Minute
		}

		if len(a.WeeklyOffDays) > 0 {
			sched.WeeklyOff = a.IsOffDay(weekday)
		} else {
			sched.WeeklyOff = isDefaultOffDay(weekday)
		}

		if a.WorkingHoursPerDay > 0 {
			sched.DailyHours = a.WorkingHoursPerDay
		}
	} else {
		sched.WeeklyOff = isDefaultOffDay(weekday)
	}

	sched.CheckIn = atClock(day, inClock, constants.DefaultCheckInTime)
	sched.CheckOut = atClock(day, outClock, constants.DefaultCheckOutTime)
	if a == nil || a.WorkingHoursPerDay == 0 {
		if h := sched.CheckOut.Sub(sched.CheckIn).Hours(); h > 0 {
			sched.DailyHours = h
		}
	}
	return sched
}

// DateOf normalizes a timestamp to midnight UTC, the form attendance
// record dates are stored in.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func isDefaultOffDay(d time.Weekday) bool {
	for _, off := range constants.DefaultWeeklyOffDays {
		if off == d {
			return true
		}
	}
	return false
}

// atClock places a "15:04" wall-clock string onto a day. A malformed
// clock falls back to the given default.
func atClock(day time.Time, clock, fallback string) time.Time {
	h, m, ok := parseClock(clock)
	if !ok {
		h, m, _ = parseClock(fallback)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
}

func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
