package repository

import (
	"context"
	"errors"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrEntranceNotFound is returned when no matching entrance record exists.
var ErrEntranceNotFound = errors.New("entrance not found")

// EntranceRepository defines the standard operations for access-event persistence.
type EntranceRepository interface {
	// Create persists a new entrance record.
	Create(ctx context.Context, entrance *entity.Entrance) error

	// FindLastByUserAndBranch retrieves the most recent entrance of a user at a
	// branch, used to alternate entry/exit and to reject duplicate check-ins.
	FindLastByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*entity.Entrance, error)

	// FindByUser retrieves the most recent entrance records for a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Entrance, error)
}
