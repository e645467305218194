package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "attend/errors"
)

// PushedRecord is one ATTLOG line a terminal POSTs to /iclock/cdata.
// Pushed records carry no device-local serial; dedup relies on the
// (user, timestamp, device) tuple alone.
type PushedRecord struct {
	UserID     string
	Timestamp  time.Time
	State      int
	VerifyType int
	DeviceID   string
}

// ParseATTLOGLine parses one tab-separated pushed log line:
// deviceLocalUserId, dateTime, status, verifyType, deviceId.
// The trailing deviceId field is optional; fallbackDeviceID covers
// terminals that omit it.
func ParseATTLOGLine(line, fallbackDeviceID string) (PushedRecord, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
	if len(fields) < 4 {
		return PushedRecord{}, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol,
			fmt.Sprintf("short ATTLOG line %q", line), nil)
	}
	ts, err := time.ParseInLocation(TimeLayout, fields[1], time.UTC)
	if err != nil {
		return PushedRecord{}, apperrors.NewAppError(apperrors.ErrCodeDeviceProtocol, "bad ATTLOG timestamp", err)
	}
	state, _ := strconv.Atoi(fields[2])
	verifyType, _ := strconv.Atoi(fields[3])

	deviceID := fallbackDeviceID
	if len(fields) >= 5 && fields[4] != "" {
		deviceID = fields[4]
	}
	return PushedRecord{
		UserID:     strings.TrimSpace(fields[0]),
		Timestamp:  ts,
		State:      state,
		VerifyType: verifyType,
		DeviceID:   deviceID,
	}, nil
}
