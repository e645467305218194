// Package device talks to biometric attendance terminals, either by
// pulling the full log over a socket (Client) or by parsing records the
// terminal pushes over HTTP (ParseATTLOGLine).
package device

import (
	"context"
	"time"
)

// LogEntry is one raw attendance record as a terminal reports it.
type LogEntry struct {
	SN         uint64    `json:"sn"`
	UserID     string    `json:"user_id"`
	RecordTime time.Time `json:"record_time"`
	Type       int       `json:"type"`
	State      int       `json:"state"`
	IP         string    `json:"ip"`
}

// Client is the terminal SDK surface the ingestion loop consumes. Tests
// inject a fake so watermark progression can be asserted without a
// socket.
type Client interface {
	Connect(ctx context.Context) error
	// FetchLog returns the device's full current attendance log.
	FetchLog(ctx context.Context) ([]LogEntry, error)
	SetTime(ctx context.Context, t time.Time) error
	Disconnect() error
}
