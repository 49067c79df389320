package v1

import (
	"encoding/json"
	"errors"
	"time"
)

// SchemaVersion is the envelope layout written by this package.
const SchemaVersion = 1

var (
	ErrMissingEventID   = errors.New("envelope: event_id is required")
	ErrMissingEventType = errors.New("envelope: event_type is required")
	ErrMissingSequence  = errors.New("envelope: sequence must be positive")
	ErrUnknownSchema    = errors.New("envelope: unsupported schema_version")
)

// Envelope wraps every governance ledger event on the wire. Sequence is
// gapless per ledger and consumers use it to detect missed or replayed events.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	Sequence         uint64          `json:"sequence"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate reports the first structural problem of e.
func (e Envelope) Validate() error {
	switch {
	case e.EventID == "":
		return ErrMissingEventID
	case e.EventType == "":
		return ErrMissingEventType
	case e.Sequence == 0:
		return ErrMissingSequence
	case e.SchemaVersion != SchemaVersion:
		return ErrUnknownSchema
	}
	return nil
}

// DecodeData unmarshals the event payload into target.
func (e Envelope) DecodeData(target any) error {
	return json.Unmarshal(e.Data, target)
}
