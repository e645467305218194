package routes

import (
	"attend/config"
	"attend/constants"
	"attend/controllers"
	middlewares "attend/middleware"
	"attend/services"
	"attend/services/logger"
	"attend/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires controllers onto the router. Management endpoints
// sit behind AuthMiddleware; the /iclock group is unauthenticated
// because terminal firmware cannot carry a bearer token.
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisCli *redis.Client, m *melody.Melody) {
	log := logger.NewDefaultLogger(logger.InfoLevel)
	notifier := notification.NewMelodyService(m)

	splitter := services.NewShiftSplitter(services.ShiftSplitterOptions{
		DB:     db,
		Logger: log,
	})
	sweep := services.NewSweepService(services.SweepServiceOptions{
		DB:     db,
		Logger: log,
	})
	payroll := services.NewPayrollService(services.PayrollServiceOptions{
		DB:     db,
		Logger: log,
		Config: config.LoadPayrollConfig(),
	})

	attendanceController := controllers.NewAttendanceController(db, redisCli, sweep, splitter)
	salaryController := controllers.NewSalaryController(db, payroll)
	deviceController := controllers.NewDeviceController(db, redisCli, splitter, notifier, log)

	v1 := router.Group("/api/v1")
	v1.GET("/attendance", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleAdmin), attendanceController.GetAttendance)
	v1.POST("/attendance/manual", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleAdmin), attendanceController.CreateManualAttendance)

	v1.POST("/salary/calculate", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleAdmin), salaryController.CalculateSalary)
	v1.POST("/salary/calculate-batch", middlewares.AuthMiddleware(constants.RoleSuperAdmin), salaryController.CalculateSalaryBatch)
	v1.GET("/salary/history", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleAdmin), salaryController.GetSalaryHistory)

	iclock := router.Group("/iclock")
	iclock.GET("/cdata", deviceController.Register)
	iclock.POST("/cdata", deviceController.PushData)
	iclock.GET("/getrequest", deviceController.GetRequest)
}
