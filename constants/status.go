package constants

// Attendance status
const (
	StatusPending          = "pending"
	StatusPresent          = "present"
	StatusLate             = "late"
	StatusEarlyArrival     = "early-arrival"
	StatusLateEarlyArrival = "late-early-arrival"
	StatusHalfDay          = "half-day"
	StatusAbsent           = "absent"
	StatusLeave            = "leave"
	StatusMissing          = "missing"
)

// AttendanceStatuses lists every status a record may carry.
var AttendanceStatuses = []string{
	StatusPending,
	StatusPresent,
	StatusLate,
	StatusEarlyArrival,
	StatusLateEarlyArrival,
	StatusHalfDay,
	StatusAbsent,
	StatusLeave,
	StatusMissing,
}

// IsValidStatus reports whether s is a known attendance status.
func IsValidStatus(s string) bool {
	for _, v := range AttendanceStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PresentLike reports whether a status counts as a worked day for payroll.
func PresentLike(s string) bool {
	switch s {
	case StatusPresent, StatusEarlyArrival, StatusLate, StatusLateEarlyArrival:
		return true
	}
	return false
}

// Employee status
const (
	EmployeeStatusActive   = 1
	EmployeeStatusInactive = 0
)

// Roles
const (
	RoleSuperAdmin = 1
	RoleAdmin      = 2
	RoleStaff      = 3
)

// IsAttendanceExempt reports whether a role is excluded from attendance
// tracking. Punches from exempt roles are discarded at ingestion.
func IsAttendanceExempt(role int) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}

// Salary calculation methods
const (
	SalaryMethodMonthly     = "monthly"
	SalaryMethodWeeklyHours = "weekly-hours"
)
