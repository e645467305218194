package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olahol/melody"
)

// Service broadcasts live events to connected dashboard clients.
type Service interface {
	SendMessage(message string) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) SendMessage(message string) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.Broadcast([]byte(message))
}

// PunchMessage builds the JSON payload pushed to the live attendance
// feed for every ingested punch.
type PunchMessage struct {
	employeeID uint
	name       string
	at         time.Time
	deviceID   string
}

func NewPunchMessage(employeeID uint, name string, at time.Time, deviceID string) *PunchMessage {
	return &PunchMessage{
		employeeID: employeeID,
		name:       name,
		at:         at,
		deviceID:   deviceID,
	}
}

func (b *PunchMessage) Build() string {
	payload, _ := json.Marshal(map[string]interface{}{
		"type":       "punch",
		"employeeId": b.employeeID,
		"name":       b.name,
		"time":       b.at.UTC().Format(time.RFC3339),
		"deviceId":   b.deviceID,
	})
	return string(payload)
}
