package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"attend/config"
	"attend/jobs"
	"attend/models"
	"attend/routes"
	"attend/services"
	"attend/services/device"
	"attend/services/logger"
	"attend/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func migrateTables() {
	err := config.DB.AutoMigrate(
		&models.Employee{},
		&models.Department{},
		&models.DepartmentAssignment{},
		&models.WeekdayOverride{},
		&models.AttendanceRecord{},
		&models.PunchEvent{},
		&models.SalaryRecord{},
		&models.Setting{},
	)
	if err != nil {
		panic("Failed to migrate tables: " + err.Error())
	}
}

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not loaded, falling back to environment variables: %v", err)
	}

	router, m, c, err := config.InitApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	migrateTables()

	appLogger := logger.NewDefaultLogger(logger.InfoLevel)
	notifier := notification.NewMelodyService(m)

	sweepService := services.NewSweepService(services.SweepServiceOptions{
		DB:     config.DB,
		Logger: appLogger,
	})
	jobs.SetAttendanceSweeper(sweepService)

	// The polled terminal is optional; push-mode terminals talk to
	// /iclock instead and need no poller.
	var ingest *services.IngestService
	deviceCfg := config.LoadDeviceConfig()
	if deviceCfg.Addr != "" {
		ingest = services.NewIngestService(services.IngestServiceOptions{
			DB:             config.DB,
			Redis:          config.RedisClient,
			Client:         device.NewTCPClient(deviceCfg.Addr, deviceCfg.DialTimeout),
			Logger:         appLogger,
			Notifier:       notifier,
			DeviceID:       deviceCfg.DeviceID,
			PollInterval:   deviceCfg.PollInterval,
			RapidThreshold: deviceCfg.RapidPunchThreshold,
		})
		ingest.Start()
		jobs.SetDeviceClockSetter(ingest)
	}

	if err := jobs.InitCronJobs(c); err != nil {
		log.Fatalf("Failed to initialize cron jobs: %v", err)
	}

	config.InitWebSocket(router, m)

	routes.SetupRoutes(router, config.DB, config.RedisClient, m)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		if ingest != nil {
			ingest.Stop()
		}
		c.Stop()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	log.Println("Server starting on port " + port + "...")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
