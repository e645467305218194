package validator

import (
	"time"

	"attend/constants"
	"attend/dto"
	"attend/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the binding-tag validation used outside gin
// handlers.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.NewAppError(errors.ErrCodeValidation, "Invalid request payload", err)
	}
	return nil
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// ValidateManualEntry checks a manual attendance correction before it
// reaches the status engine: well-formed timestamps, check-out after
// check-in, and a known status when one is pinned.
func ValidateManualEntry(req *dto.ManualAttendanceRequest) (date time.Time, checkIn, checkOut *time.Time, err error) {
	if req.EmployeeID == 0 {
		return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeRequiredField, "employeeId is required", nil)
	}

	date, parseErr := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if parseErr != nil {
		return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeInvalidTimestamp, "date must be YYYY-MM-DD", parseErr)
	}

	if req.CheckIn != "" {
		t, parseErr := time.ParseInLocation(timeLayout, req.CheckIn, time.UTC)
		if parseErr != nil {
			return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeInvalidTimestamp, "checkIn must be YYYY-MM-DD HH:MM:SS", parseErr)
		}
		checkIn = &t
	}
	if req.CheckOut != "" {
		t, parseErr := time.ParseInLocation(timeLayout, req.CheckOut, time.UTC)
		if parseErr != nil {
			return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeInvalidTimestamp, "checkOut must be YYYY-MM-DD HH:MM:SS", parseErr)
		}
		checkOut = &t
	}

	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeInvalidTimestamp, "checkOut must be after checkIn", nil)
	}
	if checkIn == nil && checkOut == nil {
		return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeRequiredField, "at least one of checkIn/checkOut is required", nil)
	}

	if req.Status != "" && !constants.IsValidStatus(req.Status) {
		return time.Time{}, nil, nil, errors.NewAppError(errors.ErrCodeInvalidStatus, "unknown status "+req.Status, nil)
	}
	return date, checkIn, checkOut, nil
}
