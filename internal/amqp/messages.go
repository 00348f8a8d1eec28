package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotRequestMessage asks the worker to take a database snapshot.
// Reason records which mutation triggered it, for the worker's logs.
type SnapshotRequestMessage struct {
	Reason    string    `json:"reason"`
	RecordID  int64     `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotRequestMessage(reason string, recordID int64) *SnapshotRequestMessage {
	return &SnapshotRequestMessage{
		Reason:    reason,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

func (m *SnapshotRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotRequestMessageFromJSON(data []byte) (*SnapshotRequestMessage, error) {
	var msg SnapshotRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LedgerSyncMessage tells the worker to mirror one purchase row. Only the
// id travels; the worker reads the current row from the database, so a
// stale message never mirrors stale data.
type LedgerSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(id int64) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
