package entity

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the direction of an access or work-log event.
type EventType string

const (
	// EventEntry indicates an entry event.
	EventEntry EventType = "entry"
	// EventExit indicates an exit event.
	EventExit EventType = "exit"
)

// String returns the string representation of the EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the EventType is a valid value.
func (t EventType) IsValid() bool {
	switch t {
	case EventEntry, EventExit:
		return true
	default:
		return false
	}
}

// Opposite returns the inverse direction, used when alternating entry/exit.
func (t EventType) Opposite() EventType {
	if t == EventEntry {
		return EventExit
	}

	return EventEntry
}

// EntranceSource identifies which capability produced an entrance record.
type EntranceSource string

const (
	// SourceQR marks entrances created by QR code validation.
	SourceQR EntranceSource = "qr"
	// SourceNFC marks entrances created by NFC tag validation.
	SourceNFC EntranceSource = "nfc"
	// SourceCheckIn marks entrances created by location-based check-in.
	SourceCheckIn EntranceSource = "checkin"
)

// Entrance is a recorded access event created by a successful QR/NFC validation
// or a location-based check-in. The Type is fixed at creation.
type Entrance struct {
	ID        uuid.UUID      // The unique ID of this access event.
	UserID    uuid.UUID      // The user who entered or exited.
	BranchID  uuid.UUID      // The branch the event belongs to.
	Type      EventType      // Entry or exit; decided when the record is created.
	Source    EntranceSource // Which capability produced the record.
	Timestamp time.Time      // When the event happened.
	Latitude  *float64       // Optional device coordinates at the moment of the event.
	Longitude *float64
}
