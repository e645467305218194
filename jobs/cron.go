package jobs

import (
	"context"
	"log"
	"time"

	"attend/config"
	"attend/services"
	"attend/utils"

	"github.com/robfig/cron/v3"
)

// AttendanceSweeper runs the daily reconciliation sweeps.
type AttendanceSweeper interface {
	CloseStalePending(ctx context.Context) (int64, error)
	MarkAbsentees(ctx context.Context, date time.Time) (int, error)
}

// DeviceClockSetter pushes server time down to the terminal.
type DeviceClockSetter interface {
	SyncClock(ctx context.Context) error
}

var (
	attendanceSweeper AttendanceSweeper
	deviceClockSetter DeviceClockSetter
)

// SetAttendanceSweeper sets the implementation the cron jobs call.
func SetAttendanceSweeper(s AttendanceSweeper) {
	attendanceSweeper = s
}

// SetDeviceClockSetter sets the clock-sync implementation. Optional;
// deployments without a polled terminal leave it nil.
func SetDeviceClockSetter(s DeviceClockSetter) {
	deviceClockSetter = s
}

// InitCronJobs registers the reconciliation schedule and starts the
// runner. Absentee marking runs just before midnight so the day's
// punches are all in; the stale-pending sweep runs right after
// midnight against the day that just closed.
func InitCronJobs(c *cron.Cron) error {
	cfg := config.LoadSweepConfig()

	_, err := c.AddFunc(cfg.AbsenteeSpec, func() {
		if attendanceSweeper == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		date := services.DateOf(time.Now())
		n, err := attendanceSweeper.MarkAbsentees(ctx, date)
		if err != nil {
			utils.LogError("absentee sweep failed: %v", err)
			return
		}
		utils.LogInfo("absentee sweep marked %d employees for %s", n, date.Format("2006-01-02"))
	})
	if err != nil {
		return err
	}

	_, err = c.AddFunc(cfg.StaleSpec, func() {
		if attendanceSweeper == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		n, err := attendanceSweeper.CloseStalePending(ctx)
		if err != nil {
			utils.LogError("stale-pending sweep failed: %v", err)
			return
		}
		utils.LogInfo("stale-pending sweep closed %d records", n)
	})
	if err != nil {
		return err
	}

	_, err = c.AddFunc(cfg.ClockSyncSpec, func() {
		if deviceClockSetter == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := deviceClockSetter.SyncClock(ctx); err != nil {
			utils.LogError("device clock sync failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Println("Cron jobs initialized successfully")
	return nil
}
