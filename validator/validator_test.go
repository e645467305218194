package validator_test

import (
	"testing"
	"time"

	"attend/dto"
	"attend/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateManualEntry_FullPair(t *testing.T) {
	req := &dto.ManualAttendanceRequest{
		EmployeeID: 7,
		Date:       "2026-03-04",
		CheckIn:    "2026-03-04 09:00:00",
		CheckOut:   "2026-03-04 17:00:00",
	}
	date, in, out, err := validator.ValidateManualEntry(req)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC), date)
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.Equal(t, time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC), *in)
	assert.Equal(t, time.Date(2026, time.March, 4, 17, 0, 0, 0, time.UTC), *out)
}

func TestValidateManualEntry_CheckOutOnly(t *testing.T) {
	req := &dto.ManualAttendanceRequest{
		EmployeeID: 7,
		Date:       "2026-03-04",
		CheckOut:   "2026-03-04 17:00:00",
	}
	_, in, out, err := validator.ValidateManualEntry(req)
	require.NoError(t, err)
	assert.Nil(t, in)
	assert.NotNil(t, out)
}

func TestValidateManualEntry_Rejections(t *testing.T) {
	cases := []struct {
		name string
		req  dto.ManualAttendanceRequest
	}{
		{"missing employee", dto.ManualAttendanceRequest{Date: "2026-03-04", CheckIn: "2026-03-04 09:00:00"}},
		{"bad date", dto.ManualAttendanceRequest{EmployeeID: 7, Date: "04/03/2026", CheckIn: "2026-03-04 09:00:00"}},
		{"bad checkIn", dto.ManualAttendanceRequest{EmployeeID: 7, Date: "2026-03-04", CheckIn: "9am"}},
		{"no punches", dto.ManualAttendanceRequest{EmployeeID: 7, Date: "2026-03-04"}},
		{"inverted pair", dto.ManualAttendanceRequest{EmployeeID: 7, Date: "2026-03-04", CheckIn: "2026-03-04 17:00:00", CheckOut: "2026-03-04 09:00:00"}},
		{"unknown status", dto.ManualAttendanceRequest{EmployeeID: 7, Date: "2026-03-04", CheckIn: "2026-03-04 09:00:00", Status: "vacationing"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := validator.ValidateManualEntry(&tc.req)
			assert.Error(t, err)
		})
	}
}
