package amqp

import (
	"encoding/json"
	"time"
)

// AnalysisRequestMessage asks the worker to run a full analysis pass for a
// user. Carries only the user and the trigger; the worker loads everything
// else from the database.
type AnalysisRequestMessage struct {
	UserID    string    `json:"user_id"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

// Triggers recorded on analysis requests.
const (
	TriggerTransaction = "transaction_created"
	TriggerBudget      = "budget_updated"
	TriggerManual      = "manual"
)

// NewAnalysisRequestMessage creates a request for the given user and trigger
func NewAnalysisRequestMessage(userID, trigger string) *AnalysisRequestMessage {
	return &AnalysisRequestMessage{
		UserID:    userID,
		Trigger:   trigger,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AnalysisRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AnalysisRequestFromJSON creates a message from JSON bytes
func AnalysisRequestFromJSON(data []byte) (*AnalysisRequestMessage, error) {
	var msg AnalysisRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
