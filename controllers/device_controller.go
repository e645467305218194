package controllers

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"attend/constants"
	"attend/models"
	"attend/services"
	"attend/services/device"
	"attend/services/logger"
	"attend/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionTTL bounds how long a terminal registration stays valid before
// the next getrequest hands out a fresh ATTLOG command.
const sessionTTL = 12 * time.Hour

// DeviceController implements the push (iclock) side of the terminal
// protocol. Terminals register with GET /iclock/cdata, poll
// GET /iclock/getrequest for commands, and POST log batches to
// /iclock/cdata. Replies are plain text, matching what terminal
// firmware expects.
type DeviceController struct {
	db       *gorm.DB
	rdb      *redis.Client
	splitter *services.ShiftSplitter
	notifier notification.Service
	logger   logger.Logger

	// Fallback session table when redis is not configured.
	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewDeviceController(db *gorm.DB, rdb *redis.Client, splitter *services.ShiftSplitter, notifier notification.Service, log logger.Logger) *DeviceController {
	if log == nil {
		log = logger.NewDefaultLogger(logger.InfoLevel)
	}
	return &DeviceController{
		db:       db,
		rdb:      rdb,
		splitter: splitter,
		notifier: notifier,
		logger:   log,
		sessions: make(map[string]time.Time),
	}
}

// Register handles GET /iclock/cdata. Re-registration resets the
// session so the next getrequest re-issues the ATTLOG command.
func (dc *DeviceController) Register(c *gin.Context) {
	sn := c.Query("SN")
	if sn == "" {
		c.String(http.StatusBadRequest, "ERROR: SN required")
		return
	}
	dc.resetSession(c.Request.Context(), sn)
	dc.logger.Info("terminal %s registered", sn)
	c.String(http.StatusOK, "OK")
}

// GetRequest handles GET /iclock/getrequest. The first poll of a
// session gets "C:1:ATTLOG" asking the terminal to upload its log;
// subsequent polls get a bare "OK" until the session is reset.
func (dc *DeviceController) GetRequest(c *gin.Context) {
	sn := c.Query("SN")
	if sn == "" {
		c.String(http.StatusBadRequest, "ERROR: SN required")
		return
	}
	if dc.claimSession(c.Request.Context(), sn) {
		c.String(http.StatusOK, "C:1:ATTLOG")
		return
	}
	c.String(http.StatusOK, "OK")
}

// PushData handles POST /iclock/cdata?table=ATTLOG. The body is one
// log record per line; each line is logged, deduplicated and applied
// to attendance. Bad lines are skipped so one mangled record cannot
// block the rest of the batch.
func (dc *DeviceController) PushData(c *gin.Context) {
	sn := c.Query("SN")
	table := c.Query("table")
	if table != "" && !strings.EqualFold(table, "ATTLOG") {
		// Other tables (OPERLOG etc) are acknowledged and dropped.
		c.String(http.StatusOK, "OK")
		return
	}

	ctx := c.Request.Context()
	processed := 0
	scanner := bufio.NewScanner(c.Request.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := device.ParseATTLOGLine(line, sn)
		if err != nil {
			dc.logger.Error("skipping unparseable ATTLOG line from %s: %v", sn, err)
			continue
		}
		if err := dc.processPush(ctx, rec); err != nil {
			dc.logger.Error("failed to apply pushed record (user %s, device %s): %v", rec.UserID, rec.DeviceID, err)
			continue
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		dc.logger.Error("reading push body from %s: %v", sn, err)
	}
	dc.logger.Info("applied %d pushed records from terminal %s", processed, sn)
	c.String(http.StatusOK, "OK")
}

func (dc *DeviceController) processPush(ctx context.Context, rec device.PushedRecord) error {
	event := models.PunchEvent{
		DeviceUserID: rec.UserID,
		Timestamp:    rec.Timestamp,
		DeviceID:     rec.DeviceID,
		VerifyType:   rec.VerifyType,
		State:        rec.State,
	}
	res := dc.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "device_user_id"},
			{Name: "timestamp"},
			{Name: "device_id"},
		},
		DoNothing: true,
	}).Create(&event)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Terminals re-push on flaky links; the dedup index makes the
		// replay a no-op.
		return nil
	}

	var emp models.Employee
	err := dc.db.WithContext(ctx).
		Preload("Assignments", "active = ?", true).
		Preload("Assignments.Overrides").
		Preload("Assignments.Department").
		Where("device_user_id = ?", rec.UserID).
		First(&emp).Error
	if err != nil {
		dc.logger.Debug("pushed punch for unknown device user %s, discarding", rec.UserID)
		return nil
	}
	if constants.IsAttendanceExempt(emp.Role) {
		dc.logger.Debug("employee %d role %d exempt from tracking, discarding punch", emp.ID, emp.Role)
		return nil
	}

	if err := dc.splitter.ApplyPunch(ctx, &emp, rec.Timestamp, rec.DeviceID); err != nil {
		return err
	}
	if dc.notifier != nil {
		msg := notification.NewPunchMessage(emp.ID, emp.Name, rec.Timestamp, rec.DeviceID).Build()
		if err := dc.notifier.SendMessage(msg); err != nil {
			dc.logger.Debug("broadcast punch failed: %v", err)
		}
	}
	return nil
}

func sessionKey(sn string) string { return "iclock:session:" + sn }

// resetSession forgets any issued ATTLOG command for the terminal.
func (dc *DeviceController) resetSession(ctx context.Context, sn string) {
	if dc.rdb != nil {
		if err := dc.rdb.Del(ctx, sessionKey(sn)).Err(); err != nil {
			dc.logger.Error("failed to reset session for terminal %s: %v", sn, err)
		}
		return
	}
	dc.mu.Lock()
	delete(dc.sessions, sn)
	dc.mu.Unlock()
}

// claimSession returns true exactly once per session, marking the
// ATTLOG command as issued.
func (dc *DeviceController) claimSession(ctx context.Context, sn string) bool {
	if dc.rdb != nil {
		ok, err := dc.rdb.SetNX(ctx, sessionKey(sn), "1", sessionTTL).Result()
		if err != nil {
			dc.logger.Error("session check for terminal %s failed: %v", sn, err)
			return false
		}
		return ok
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if issued, ok := dc.sessions[sn]; ok && time.Since(issued) < sessionTTL {
		return false
	}
	dc.sessions[sn] = time.Now()
	return true
}
