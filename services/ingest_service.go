package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"attend/constants"
	apperrors "attend/errors"
	"attend/models"
	"attend/services/device"
	"attend/services/logger"
	"attend/services/notification"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngestService bridges one terminal device to the attendance store. It
// polls on a fixed interval, keeps a monotonically increasing watermark
// of the highest device-local serial processed, and skips a tick
// entirely if the previous poll is still running so the device socket is
// never used concurrently. The watermark survives restarts through
// Redis; without Redis the first poll re-runs the backfill, which the
// punch-log upsert keys make harmless.
type IngestService struct {
	db       *gorm.DB
	rdb      *redis.Client
	client   device.Client
	splitter *ShiftSplitter
	logger   logger.Logger
	notifier notification.Service

	deviceID       string
	pollInterval   time.Duration
	rapidThreshold time.Duration

	mu         sync.Mutex
	polling    bool
	watermark  uint64
	backfilled bool

	stop chan struct{}
	done chan struct{}
}

type IngestServiceOptions struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Client         device.Client
	Splitter       *ShiftSplitter
	Logger         logger.Logger
	Notifier       notification.Service
	DeviceID       string
	PollInterval   time.Duration
	RapidThreshold time.Duration
}

func NewIngestService(opts IngestServiceOptions) *IngestService {
	interval := opts.PollInterval
	if interval == 0 {
		interval = constants.DefaultPollInterval
	}
	threshold := opts.RapidThreshold
	if threshold == 0 {
		threshold = constants.DefaultRapidPunchThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	splitter := opts.Splitter
	if splitter == nil {
		splitter = NewShiftSplitter(ShiftSplitterOptions{
			DB:             opts.DB,
			Logger:         opts.Logger,
			RapidThreshold: threshold,
		})
	}
	s := &IngestService{
		db:             opts.DB,
		rdb:            opts.Redis,
		client:         opts.Client,
		splitter:       splitter,
		logger:         opts.Logger,
		notifier:       opts.Notifier,
		deviceID:       opts.DeviceID,
		pollInterval:   interval,
		rapidThreshold: threshold,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	s.restoreWatermark()
	return s
}

// Start launches the polling loop. One tick runs at a time; a tick that
// fires while the previous poll is in flight is skipped.
func (s *IngestService) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.PollOnce(context.Background()); err != nil && !errors.Is(err, apperrors.ErrPollInProgress) {
					s.logger.Error("poll failed, will retry next tick: %v", err)
				}
			}
		}
	}()
	s.logger.Info("ingestion loop started for device %s (interval %v)", s.deviceID, s.pollInterval)
}

// Stop shuts the polling loop down and waits for the in-flight poll.
func (s *IngestService) Stop() {
	close(s.stop)
	<-s.done
}

// Watermark returns the highest device serial processed so far.
func (s *IngestService) Watermark() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// PollOnce runs a single poll cycle: connect, fetch the full log, and
// process entries above the watermark in serial order. Connection
// failures are logged and retried on the next tick; the watermark never
// rolls back.
func (s *IngestService) PollOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.polling {
		s.mu.Unlock()
		s.logger.Debug("previous poll still running, skipping tick")
		return apperrors.ErrPollInProgress
	}
	s.polling = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.polling = false
		s.mu.Unlock()
	}()

	if err := s.client.Connect(ctx); err != nil {
		return fmt.Errorf("connect device %s: %w", s.deviceID, err)
	}
	defer s.client.Disconnect()

	entries, err := s.client.FetchLog(ctx)
	if err != nil {
		return fmt.Errorf("fetch log from device %s: %w", s.deviceID, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SN < entries[j].SN })

	s.mu.Lock()
	backfilled := s.backfilled
	watermark := s.watermark
	s.mu.Unlock()

	if !backfilled {
		return s.backfill(ctx, entries)
	}

	processed := 0
	for _, e := range entries {
		if e.SN <= watermark {
			continue
		}
		if err := s.processEntry(ctx, e); err != nil {
			// The entry stays above the watermark and is retried on
			// the next tick.
			return err
		}
		watermark = e.SN
		processed++
		s.advanceWatermark(e.SN)
	}
	if processed > 0 {
		s.logger.Info("processed %d new punches from device %s, watermark=%d", processed, s.deviceID, watermark)
		s.persistWatermark(ctx)
	}
	return nil
}

// backfill runs once per process lifetime on the first successful poll:
// the device's whole existing log is written to the punch-event log
// (deduplicated by the upsert key) and the watermark jumps to the
// highest serial seen. The rapid-punch filter is not applied
// retroactively; dedup alone covers the history.
func (s *IngestService) backfill(ctx context.Context, entries []device.LogEntry) error {
	var max uint64
	for _, e := range entries {
		if _, err := s.logPunch(ctx, e); err != nil {
			return err
		}
		if e.SN > max {
			max = e.SN
		}
	}
	s.mu.Lock()
	s.backfilled = true
	if max > s.watermark {
		s.watermark = max
	}
	s.mu.Unlock()
	s.persistWatermark(ctx)
	s.logger.Info("backfilled %d punches from device %s, watermark=%d", len(entries), s.deviceID, max)
	return nil
}

// processEntry logs one punch and applies it to the day's attendance
// records. Unknown device users and attendance-exempt roles are
// discarded quietly; replayed (user, timestamp, device) tuples are
// no-ops.
func (s *IngestService) processEntry(ctx context.Context, e device.LogEntry) error {
	inserted, err := s.logPunch(ctx, e)
	if err != nil {
		return err
	}
	if !inserted {
		s.logger.Debug("punch already logged (user %s at %s), skipping", e.UserID, e.RecordTime.Format(time.RFC3339))
		return nil
	}

	var emp models.Employee
	err = s.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		Where("device_user_id = ?", e.UserID).
		First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Debug("no employee for device user %s, discarding punch", e.UserID)
		return nil
	}
	if err != nil {
		return err
	}
	if constants.IsAttendanceExempt(emp.Role) {
		s.logger.Debug("employee %d role %d exempt from tracking, discarding punch", emp.ID, emp.Role)
		return nil
	}

	if err := s.splitter.ApplyPunch(ctx, &emp, e.RecordTime, s.deviceID); err != nil {
		return err
	}

	if s.notifier != nil {
		msg := notification.NewPunchMessage(emp.ID, emp.Name, e.RecordTime, s.deviceID).Build()
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Error("broadcast punch failed: %v", err)
		}
	}
	return nil
}

// logPunch upserts into the immutable punch-event log. It reports
// whether the row was newly inserted.
func (s *IngestService) logPunch(ctx context.Context, e device.LogEntry) (bool, error) {
	event := models.PunchEvent{
		DeviceUserID: e.UserID,
		Timestamp:    e.RecordTime,
		DeviceID:     s.deviceID,
		Serial:       e.SN,
		VerifyType:   e.Type,
		State:        e.State,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_user_id"}, {Name: "timestamp"}, {Name: "device_id"}},
		DoNothing: true,
	}).Create(&event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *IngestService) advanceWatermark(sn uint64) {
	s.mu.Lock()
	if sn > s.watermark {
		s.watermark = sn
	}
	s.mu.Unlock()
}

func (s *IngestService) watermarkKey() string {
	return "ingest:watermark:" + s.deviceID
}

func (s *IngestService) restoreWatermark() {
	if s.rdb == nil {
		return
	}
	val, err := s.rdb.Get(context.Background(), s.watermarkKey()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("restore watermark: %v", err)
		}
		return
	}
	wm, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		s.logger.Error("restore watermark: bad value %q", val)
		return
	}
	s.mu.Lock()
	s.watermark = wm
	// A surviving watermark means the history is already in the log.
	s.backfilled = true
	s.mu.Unlock()
	s.logger.Info("restored watermark %d for device %s", wm, s.deviceID)
}

func (s *IngestService) persistWatermark(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	s.mu.Lock()
	wm := s.watermark
	s.mu.Unlock()
	if err := s.rdb.Set(ctx, s.watermarkKey(), strconv.FormatUint(wm, 10), 0).Err(); err != nil {
		s.logger.Error("persist watermark: %v", err)
	}
}

// SyncClock pushes the server clock to the device.
func (s *IngestService) SyncClock(ctx context.Context) error {
	if err := s.client.Connect(ctx); err != nil {
		return err
	}
	defer s.client.Disconnect()
	return s.client.SetTime(ctx, time.Now().UTC())
}
