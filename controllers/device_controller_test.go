package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"attend/constants"
	"attend/controllers"
	"attend/models"
	"attend/services"
	"attend/services/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newIclockRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Employee{},
		&models.Department{},
		&models.DepartmentAssignment{},
		&models.WeekdayOverride{},
		&models.AttendanceRecord{},
		&models.PunchEvent{},
	))

	log := logger.NewDefaultLogger(logger.ErrorLevel)
	splitter := services.NewShiftSplitter(services.ShiftSplitterOptions{DB: db, Logger: log})
	dc := controllers.NewDeviceController(db, nil, splitter, nil, log)

	router := gin.New()
	router.GET("/iclock/cdata", dc.Register)
	router.POST("/iclock/cdata", dc.PushData)
	router.GET("/iclock/getrequest", dc.GetRequest)
	return router, db
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestIclock_RegistrationHandshake(t *testing.T) {
	router, _ := newIclockRouter(t)

	w := get(router, "/iclock/cdata?SN=terminal-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	// First poll of the session asks for the log, later polls idle.
	w = get(router, "/iclock/getrequest?SN=terminal-1")
	assert.Equal(t, "C:1:ATTLOG", w.Body.String())
	w = get(router, "/iclock/getrequest?SN=terminal-1")
	assert.Equal(t, "OK", w.Body.String())

	// Re-registration resets the session.
	get(router, "/iclock/cdata?SN=terminal-1")
	w = get(router, "/iclock/getrequest?SN=terminal-1")
	assert.Equal(t, "C:1:ATTLOG", w.Body.String())
}

func TestIclock_MissingSerialRejected(t *testing.T) {
	router, _ := newIclockRouter(t)
	assert.Equal(t, http.StatusBadRequest, get(router, "/iclock/cdata").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/iclock/getrequest").Code)
}

func TestIclock_PushAppliesAttendance(t *testing.T) {
	router, db := newIclockRouter(t)

	emp := &models.Employee{
		Name: "Pat", Email: "pat@example.com", DeviceUserID: "1042",
		Role: constants.RoleStaff, Status: constants.EmployeeStatusActive,
	}
	require.NoError(t, db.Create(emp).Error)
	dept := &models.Department{Name: "Warehouse"}
	require.NoError(t, db.Create(dept).Error)
	require.NoError(t, db.Create(&models.DepartmentAssignment{
		EmployeeID: emp.ID, DepartmentID: dept.ID, Active: true,
	}).Error)

	body := "1042\t2026-03-04 08:57:22\t0\t1\n" +
		"1042\t2026-03-04 17:03:09\t1\t1\n" +
		"garbage line\n"
	w := post(router, "/iclock/cdata?SN=terminal-1&table=ATTLOG", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	var punches int64
	db.Model(&models.PunchEvent{}).Count(&punches)
	assert.EqualValues(t, 2, punches)

	var rec models.AttendanceRecord
	day := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Where("employee_id = ? AND date = ?", emp.ID, day).First(&rec).Error)
	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, "terminal-1", rec.DeviceID)
}

func TestIclock_ReplayedPushIsIdempotent(t *testing.T) {
	router, db := newIclockRouter(t)

	body := "1042\t2026-03-04 08:57:22\t0\t1\n"
	post(router, "/iclock/cdata?SN=terminal-1", body)
	post(router, "/iclock/cdata?SN=terminal-1", body)

	var punches int64
	db.Model(&models.PunchEvent{}).Count(&punches)
	assert.EqualValues(t, 1, punches)
}

func TestIclock_NonAttlogTableDropped(t *testing.T) {
	router, db := newIclockRouter(t)

	w := post(router, "/iclock/cdata?SN=terminal-1&table=OPERLOG", "whatever\n")
	assert.Equal(t, http.StatusOK, w.Code)

	var punches int64
	db.Model(&models.PunchEvent{}).Count(&punches)
	assert.Zero(t, punches)
}
