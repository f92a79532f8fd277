// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// WorkLogInput defines the data required to start or stop a remote-work session.
type WorkLogInput struct {
	UserID      uuid.UUID
	Description string // Optional free-text note.
}

// WorkLogUsecase defines the interface for remote-work time logging.
// Entry and exit are independent server-side operations; the only client-held
// state involved is the session used to authenticate the call.
type WorkLogUsecase interface {
	LogEntry(ctx context.Context, input *WorkLogInput) (*entity.WorkLogRecord, error)
	LogExit(ctx context.Context, input *WorkLogInput) (*entity.WorkLogRecord, error)
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.WorkLogRecord, error)
}
