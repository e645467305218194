package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"attend/constants"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file, falling back to process env: %v", err)
	}
	return nil
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Warning: invalid float for %s=%q, using %f", key, v, fallback)
		return fallback
	}
	return f
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

// DeviceConfig configures the terminal poller.
type DeviceConfig struct {
	Addr                string
	DeviceID            string
	PollInterval        time.Duration
	DialTimeout         time.Duration
	RapidPunchThreshold time.Duration
}

func LoadDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Addr:                GetEnv("DEVICE_ADDR"),
		DeviceID:            GetEnvDefault("DEVICE_ID", "terminal-1"),
		PollInterval:        GetEnvDuration("DEVICE_POLL_INTERVAL", constants.DefaultPollInterval),
		DialTimeout:         GetEnvDuration("DEVICE_DIAL_TIMEOUT", constants.DefaultDialTimeout),
		RapidPunchThreshold: GetEnvDuration("RAPID_PUNCH_THRESHOLD", constants.DefaultRapidPunchThreshold),
	}
}

// PayrollConfig holds the salary calculation thresholds.
type PayrollConfig struct {
	LateThreshold      int
	HalfDayThreshold   int
	EarlyThreshold     int
	LateEarlyThreshold int
	LeaveThreshold     int

	PerfectAttendancePercent float64
	PerfectAttendanceBonus   int64
}

func LoadPayrollConfig() PayrollConfig {
	return PayrollConfig{
		LateThreshold:            GetEnvInt("SALARY_LATE_THRESHOLD", constants.DefaultLateThreshold),
		HalfDayThreshold:         GetEnvInt("SALARY_HALFDAY_THRESHOLD", constants.DefaultHalfDayThreshold),
		EarlyThreshold:           GetEnvInt("SALARY_EARLY_THRESHOLD", constants.DefaultEarlyThreshold),
		LateEarlyThreshold:       GetEnvInt("SALARY_LATE_EARLY_THRESHOLD", constants.DefaultLateEarlyThreshold),
		LeaveThreshold:           GetEnvInt("SALARY_LEAVE_THRESHOLD", constants.DefaultLeaveThreshold),
		PerfectAttendancePercent: GetEnvFloat("SALARY_PERFECT_ATTENDANCE_PERCENT", constants.DefaultPerfectAttendancePercent),
		PerfectAttendanceBonus:   int64(GetEnvInt("SALARY_PERFECT_ATTENDANCE_BONUS", constants.DefaultPerfectAttendanceBonus)),
	}
}

// SweepConfig holds the cron specs for the reconciliation passes.
type SweepConfig struct {
	AbsenteeSpec  string
	StaleSpec     string
	ClockSyncSpec string
}

func LoadSweepConfig() SweepConfig {
	return SweepConfig{
		AbsenteeSpec:  GetEnvDefault("SWEEP_ABSENTEE_SPEC", constants.DefaultAbsenteeSweepSpec),
		StaleSpec:     GetEnvDefault("SWEEP_STALE_SPEC", constants.DefaultStaleSweepSpec),
		ClockSyncSpec: GetEnvDefault("DEVICE_CLOCK_SYNC_SPEC", constants.DefaultClockSyncSpec),
	}
}
