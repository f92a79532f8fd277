package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkLogRecord is a remote-work time-logging event. Records always come in
// entry/exit pairs per user; pairing rules are enforced by the use case, not here.
type WorkLogRecord struct {
	ID          uuid.UUID // The unique ID of this work-log record.
	UserID      uuid.UUID // The user whose work session is being logged.
	Type        EventType // Entry starts a work session, exit ends it.
	Timestamp   time.Time // When the event was recorded.
	Description string    // Optional free-text note supplied by the user.
}
