package services

import (
	"attend/constants"
	"attend/models"
)

// EvaluateRecord recomputes a record's working hours and, unless the
// status was manually pinned, derives the day's status from the resolved
// schedule. It has no storage dependency; callers persist the record.
//
// A record missing either punch keeps its current status (pending until
// the second punch arrives). With both punches present:
//
//	arrivedLate = checkIn - scheduledCheckIn  > checkInLeverage
//	leftEarly   = scheduledCheckOut - checkOut > checkOutLeverage
//
// and the status is late-early-arrival, late, early-arrival or present.
// Without a schedule (record not linked to an assignment) a coarse
// hours-only rule applies.
func EvaluateRecord(rec *models.AttendanceRecord, sched *ResolvedSchedule) {
	if rec.CheckIn == nil || rec.CheckOut == nil {
		return
	}

	hours := rec.CheckOut.Sub(*rec.CheckIn).Hours()
	if hours < 0 {
		hours = 0
	}
	rec.WorkingHours = hours

	// A manual entry pinned to a terminal status keeps it; hours were
	// still recomputed above.
	if rec.IsManualEntry && rec.Status != constants.StatusPending {
		return
	}

	if sched == nil {
		rec.Status = coarseStatus(hours)
		return
	}

	arrivedLate := rec.CheckIn.Sub(sched.CheckIn) > sched.CheckInLeverage
	leftEarly := sched.CheckOut.Sub(*rec.CheckOut) > sched.CheckOutLeverage

	switch {
	case arrivedLate && leftEarly:
		rec.Status = constants.StatusLateEarlyArrival
	case arrivedLate:
		rec.Status = constants.StatusLate
	case leftEarly:
		rec.Status = constants.StatusEarlyArrival
	default:
		rec.Status = constants.StatusPresent
	}
}

// coarseStatus classifies by elapsed hours alone, for records with no
// resolvable schedule.
func coarseStatus(hours float64) string {
	switch {
	case hours >= 8:
		return constants.StatusPresent
	case hours >= 4:
		return constants.StatusHalfDay
	case hours > 0:
		return constants.StatusLate
	default:
		return constants.StatusPending
	}
}
