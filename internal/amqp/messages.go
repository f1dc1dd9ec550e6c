package amqp

import (
	"encoding/json"
	"time"
)

// Refresh reasons carried on the wire so the worker can log why it synced.
const (
	ReasonManual    = "manual"
	ReasonScheduled = "scheduled"
	ReasonStartup   = "startup"
)

// RefreshMessage asks the snapshot worker to re-fetch the sheet. It carries
// no data beyond the reason; the worker always pulls the full sheet.
type RefreshMessage struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewRefreshMessage(reason string) *RefreshMessage {
	return &RefreshMessage{
		Reason:      reason,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON creates a message from JSON bytes
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
