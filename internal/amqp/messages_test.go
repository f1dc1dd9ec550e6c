package amqp

import (
	"testing"
	"time"
)

func TestNewRefreshMessage(t *testing.T) {
	msg := NewRefreshMessage(ReasonManual)

	if msg.Reason != ReasonManual {
		t.Errorf("NewRefreshMessage() Reason = %v, want %v", msg.Reason, ReasonManual)
	}
	if msg.RequestedAt.IsZero() {
		t.Error("NewRefreshMessage() RequestedAt should not be zero")
	}
	if time.Since(msg.RequestedAt) > time.Second {
		t.Error("NewRefreshMessage() RequestedAt should be recent")
	}
}

func TestRefreshMessage_JSON(t *testing.T) {
	requestedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &RefreshMessage{
		Reason:      ReasonScheduled,
		RequestedAt: requestedAt,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := RefreshMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RefreshMessageFromJSON() error = %v", err)
	}

	if parsedMsg.Reason != msg.Reason {
		t.Errorf("Parsed Reason = %v, want %v", parsedMsg.Reason, msg.Reason)
	}
	if !parsedMsg.RequestedAt.Equal(msg.RequestedAt) {
		t.Errorf("Parsed RequestedAt = %v, want %v", parsedMsg.RequestedAt, msg.RequestedAt)
	}
}

func TestRefreshMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"reason": 42}`)

	_, err := RefreshMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("RefreshMessageFromJSON() should fail with invalid JSON")
	}
}
