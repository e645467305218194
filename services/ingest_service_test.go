package services_test

import (
	"context"
	"testing"
	"time"

	"attend/models"
	"attend/services"
	"attend/services/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeDevice is an in-memory device.Client whose log the test appends
// to between polls.
type fakeDevice struct {
	entries  []device.LogEntry
	connects int
	setTimes []time.Time
}

func (f *fakeDevice) Connect(ctx context.Context) error {
	f.connects++
	return nil
}

func (f *fakeDevice) FetchLog(ctx context.Context) ([]device.LogEntry, error) {
	out := make([]device.LogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeDevice) SetTime(ctx context.Context, t time.Time) error {
	f.setTimes = append(f.setTimes, t)
	return nil
}

func (f *fakeDevice) Disconnect() error { return nil }

func (f *fakeDevice) push(sn uint64, userID string, at time.Time) {
	f.entries = append(f.entries, device.LogEntry{
		SN:         sn,
		UserID:     userID,
		RecordTime: at,
	})
}

func newIngest(db *gorm.DB, dev device.Client) *services.IngestService {
	return services.NewIngestService(services.IngestServiceOptions{
		DB:       db,
		Client:   dev,
		Logger:   testLogger(),
		DeviceID: "dev-1",
	})
}

func countPunches(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PunchEvent{}).Count(&n).Error)
	return n
}

func TestIngest_FirstPollBackfillsWithoutAttendance(t *testing.T) {
	db := newTestDB(t)
	emp := createEmployee(t, db, "201")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)

	dev := &fakeDevice{}
	dev.push(1, "201", at(2026, time.March, 2, 9, 0))
	dev.push(2, "201", at(2026, time.March, 2, 17, 0))

	ingest := newIngest(db, dev)
	require.NoError(t, ingest.PollOnce(context.Background()))

	// Backfill logs history but creates no attendance records.
	assert.EqualValues(t, 2, countPunches(t, db))
	assert.EqualValues(t, 2, ingest.Watermark())

	var recCount int64
	db.Model(&models.AttendanceRecord{}).Count(&recCount)
	assert.Zero(t, recCount)
}

func TestIngest_ProcessesOnlyAboveWatermark(t *testing.T) {
	db := newTestDB(t)
	emp := createEmployee(t, db, "202")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)

	dev := &fakeDevice{}
	dev.push(1, "202", at(2026, time.March, 2, 9, 0))

	ingest := newIngest(db, dev)
	require.NoError(t, ingest.PollOnce(context.Background()))
	require.EqualValues(t, 1, ingest.Watermark())

	// New punches arrive after the backfill poll.
	dev.push(2, "202", at(2026, time.March, 4, 9, 0))
	dev.push(3, "202", at(2026, time.March, 4, 17, 0))
	require.NoError(t, ingest.PollOnce(context.Background()))

	assert.EqualValues(t, 3, ingest.Watermark())
	assert.EqualValues(t, 3, countPunches(t, db))

	rec := getRecord(t, db, emp.ID, dept.ID, at(2026, time.March, 4, 0, 0))
	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, at(2026, time.March, 4, 9, 0), rec.CheckIn.UTC())
	assert.Equal(t, at(2026, time.March, 4, 17, 0), rec.CheckOut.UTC())
}

func TestIngest_ReplayedPollIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	emp := createEmployee(t, db, "203")
	dept := createDepartment(t, db, "Warehouse")
	createAssignment(t, db, emp, dept, nil)

	dev := &fakeDevice{}
	ingest := newIngest(db, dev)
	require.NoError(t, ingest.PollOnce(context.Background())) // empty backfill

	dev.push(1, "203", at(2026, time.March, 4, 9, 0))
	dev.push(2, "203", at(2026, time.March, 4, 17, 0))
	require.NoError(t, ingest.PollOnce(context.Background()))
	require.NoError(t, ingest.PollOnce(context.Background()))
	require.NoError(t, ingest.PollOnce(context.Background()))

	assert.EqualValues(t, 2, countPunches(t, db))
	var recCount int64
	db.Model(&models.AttendanceRecord{}).
		Where("employee_id = ?", emp.ID).
		Count(&recCount)
	assert.EqualValues(t, 1, recCount)
}

func TestIngest_UnknownAndExemptUsersDiscarded(t *testing.T) {
	db := newTestDB(t)
	admin := createEmployee(t, db, "901")
	require.NoError(t, db.Model(admin).Update("role", 1).Error)

	dev := &fakeDevice{}
	ingest := newIngest(db, dev)
	require.NoError(t, ingest.PollOnce(context.Background())) // empty backfill

	dev.push(1, "nobody", at(2026, time.March, 4, 9, 0))
	dev.push(2, "901", at(2026, time.March, 4, 9, 5))
	require.NoError(t, ingest.PollOnce(context.Background()))

	// Both punches are logged for audit, neither creates attendance.
	assert.EqualValues(t, 2, countPunches(t, db))
	var recCount int64
	db.Model(&models.AttendanceRecord{}).Count(&recCount)
	assert.Zero(t, recCount)
	assert.EqualValues(t, 2, ingest.Watermark())
}

func TestIngest_SyncClockPushesServerTime(t *testing.T) {
	db := newTestDB(t)
	dev := &fakeDevice{}
	ingest := newIngest(db, dev)

	require.NoError(t, ingest.SyncClock(context.Background()))
	require.Len(t, dev.setTimes, 1)
	assert.WithinDuration(t, time.Now().UTC(), dev.setTimes[0], 5*time.Second)
}
