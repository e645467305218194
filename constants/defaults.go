package constants

import "time"

// Schedule defaults, used when neither the assignment nor the department
// specifies a value.
const (
	DefaultCheckInTime  = "09:00"
	DefaultCheckOutTime = "17:00"

	DefaultCheckInLeverageMin  = 15
	DefaultCheckOutLeverageMin = 10

	DefaultDailyHours = 8.0
)

// DefaultWeeklyOffDays is the fallback weekly-off set (Saturday and Sunday).
var DefaultWeeklyOffDays = []time.Weekday{time.Saturday, time.Sunday}

// Ingestion defaults
const (
	DefaultPollInterval = 30 * time.Second
	DefaultDialTimeout  = 5 * time.Second

	// A second punch inside this window of the first is treated as a
	// terminal double-scan, not a real check-out.
	DefaultRapidPunchThreshold = 3 * time.Hour
)

// Payroll threshold defaults. Each counts how many occurrences convert
// into one absence-equivalent day.
const (
	DefaultLateThreshold      = 3
	DefaultHalfDayThreshold   = 2
	DefaultEarlyThreshold     = 3
	DefaultLateEarlyThreshold = 2
	DefaultLeaveThreshold     = 2

	DefaultPerfectAttendancePercent = 95.0
	DefaultPerfectAttendanceBonus   = 0
)

// Cron schedules
const (
	DefaultAbsenteeSweepSpec = "59 23 * * *"
	DefaultStaleSweepSpec    = "5 0 * * *"
	DefaultClockSyncSpec     = "30 3 * * *"
)
