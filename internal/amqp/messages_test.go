package amqp

import (
	"testing"
	"time"
)

func TestNewAnalysisRequestMessage(t *testing.T) {
	msg := NewAnalysisRequestMessage("alice", TriggerTransaction)

	if msg.UserID != "alice" {
		t.Errorf("NewAnalysisRequestMessage() UserID = %v, want alice", msg.UserID)
	}
	if msg.Trigger != TriggerTransaction {
		t.Errorf("NewAnalysisRequestMessage() Trigger = %v, want %v", msg.Trigger, TriggerTransaction)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewAnalysisRequestMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewAnalysisRequestMessage() Timestamp should be recent")
	}
}

func TestAnalysisRequestMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := &AnalysisRequestMessage{
		UserID:    "alice",
		Trigger:   TriggerManual,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := AnalysisRequestFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("AnalysisRequestFromJSON() error = %v", err)
	}

	if parsedMsg.UserID != msg.UserID {
		t.Errorf("Parsed UserID = %v, want %v", parsedMsg.UserID, msg.UserID)
	}
	if parsedMsg.Trigger != msg.Trigger {
		t.Errorf("Parsed Trigger = %v, want %v", parsedMsg.Trigger, msg.Trigger)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestAnalysisRequestMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"user_id": 42, "trigger": []}`)

	if _, err := AnalysisRequestFromJSON(invalidJSON); err == nil {
		t.Error("AnalysisRequestFromJSON() should fail with invalid JSON")
	}
}
