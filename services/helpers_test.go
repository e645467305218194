package services_test

import (
	"testing"
	"time"

	"attend/constants"
	"attend/models"
	"attend/services/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	// One in-memory sqlite database per connection; pin the pool to a
	// single connection so every query sees the same database.
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
		&models.SalaryRecord{},
		&models.Setting{},
	))
	return db
}

func testLogger() logger.Logger {
	return logger.NewDefaultLogger(logger.ErrorLevel)
}

func createEmployee(t *testing.T, db *gorm.DB, deviceUserID string) *models.Employee {
	t.Helper()
	emp := &models.Employee{
		Name:         "Employee " + deviceUserID,
		Email:        deviceUserID + "@example.com",
		DeviceUserID: deviceUserID,
		Role:         constants.RoleStaff,
		Status:       constants.EmployeeStatusActive,
	}
	require.NoError(t, db.Create(emp).Error)
	return emp
}

func createDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	dept := &models.Department{Name: name}
	require.NoError(t, db.Create(dept).Error)
	return dept
}

func createAssignment(t *testing.T, db *gorm.DB, emp *models.Employee, dept *models.Department, mutate func(*models.DepartmentAssignment)) *models.DepartmentAssignment {
	t.Helper()
	a := &models.DepartmentAssignment{
		EmployeeID:         emp.ID,
		DepartmentID:       dept.ID,
		Active:             true,
		BaseSalary:         30000,
		WorkingDaysPerWeek: 5,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// loadEmployee reloads an employee with active assignments the way the
// ingestion path does.
func loadEmployee(t *testing.T, db *gorm.DB, id uint) *models.Employee {
	t.Helper()
	var emp models.Employee
	err := db.
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		First(&emp, id).Error
	require.NoError(t, err)
	return &emp
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }
