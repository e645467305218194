package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidRole  ErrorCode = "INVALID_ROLE"

	// Employee errors
	ErrCodeEmployeeNotFound  ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmployeeExempt    ErrorCode = "EMPLOYEE_EXEMPT"
	ErrCodeUnknownDeviceUser ErrorCode = "UNKNOWN_DEVICE_USER"

	// Attendance errors
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidTimestamp ErrorCode = "INVALID_TIMESTAMP"
	ErrCodeManualDisabled   ErrorCode = "MANUAL_ENTRY_DISABLED"
	ErrCodeRecordConflict   ErrorCode = "RECORD_CONFLICT"

	// Device errors
	ErrCodeDeviceUnreachable ErrorCode = "DEVICE_UNREACHABLE"
	ErrCodeDeviceProtocol    ErrorCode = "DEVICE_PROTOCOL"

	// Salary errors
	ErrCodeNoBaseSalary  ErrorCode = "NO_BASE_SALARY"
	ErrCodeInvalidPeriod ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidMethod ErrorCode = "INVALID_METHOD"

	// Database errors
	ErrCodeDBError     ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound  ErrorCode = "DB_NOT_FOUND"
	ErrCodeDBDuplicate ErrorCode = "DB_DUPLICATE"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// AppError is the application-level error carrying a code and an
// optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError reports whether err is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

var (
	// Employee errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee inactive")

	// Attendance errors
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrRecordComplete  = errors.New("attendance record already has check-in and check-out")
	ErrRapidPunch      = errors.New("punch discarded as rapid re-scan")
	ErrOutsideShift    = errors.New("punch outside every shift window")
	ErrManualDisabled  = errors.New("manual attendance entry disabled")

	// Salary errors
	ErrNoBaseSalary   = errors.New("no salary configured")
	ErrSalaryNotFound = errors.New("salary record not found")

	// Device errors
	ErrDeviceUnreachable = errors.New("device unreachable")
	ErrPollInProgress    = errors.New("poll already in progress")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
	ErrInvalidFormat   = errors.New("invalid format")
)
