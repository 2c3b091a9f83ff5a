package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the export queue.
const (
	OpExport = "export"
	OpDelete = "delete"
)

// RecordMessage is a lightweight envelope for ledger-export work. It carries
// only identifiers; the worker fetches the full record from the database.
type RecordMessage struct {
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportMessage builds a message asking the worker to export a record.
func NewExportMessage(userID, id string) *RecordMessage {
	return &RecordMessage{Op: OpExport, ID: id, UserID: userID, Timestamp: time.Now()}
}

// NewDeleteMessage builds a message noting a record was deleted.
func NewDeleteMessage(userID, id string) *RecordMessage {
	return &RecordMessage{Op: OpDelete, ID: id, UserID: userID, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordMessageFromJSON parses and validates a message from JSON bytes.
func RecordMessageFromJSON(data []byte) (*RecordMessage, error) {
	var msg RecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op != OpExport && msg.Op != OpDelete {
		return nil, fmt.Errorf("unknown message op: %q", msg.Op)
	}
	if msg.ID == "" || msg.UserID == "" {
		return nil, fmt.Errorf("message missing id or user_id")
	}
	return &msg, nil
}
