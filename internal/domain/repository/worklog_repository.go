package repository

import (
	"context"
	"errors"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrWorkLogNotFound is returned when no matching work-log record exists.
var ErrWorkLogNotFound = errors.New("work log record not found")

// WorkLogRepository defines the standard operations for remote-work log persistence.
type WorkLogRepository interface {
	// Create persists a new work-log record.
	Create(ctx context.Context, record *entity.WorkLogRecord) error

	// FindLastByUser retrieves the most recent work-log record for a user,
	// used to enforce start/stop pairing.
	FindLastByUser(ctx context.Context, userID uuid.UUID) (*entity.WorkLogRecord, error)

	// FindByUser retrieves the most recent work-log records for a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.WorkLogRecord, error)
}
