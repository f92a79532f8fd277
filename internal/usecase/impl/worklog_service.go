package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "github.com/passgage/passgage-go/internal/delivery/context"
	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultWorkLogHistoryLimit = 50

// workLogService implements the WorkLogUsecase interface.
type workLogService struct {
	txManager   repository.TransactionManager
	workLogRepo repository.WorkLogRepository
	logger      *slog.Logger
}

// WorkLogServiceParams holds dependencies for workLogService, injected by Fx.
type WorkLogServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	WorkLogRepo repository.WorkLogRepository
	Logger      *slog.Logger
}

// NewWorkLogService is the constructor for workLogService.
func NewWorkLogService(params WorkLogServiceParams) usecase.WorkLogUsecase {
	return &workLogService{
		txManager:   params.TxManager,
		workLogRepo: params.WorkLogRepo,
		logger:      params.Logger,
	}
}

func (srv *workLogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// LogEntry starts a remote-work session for the user.
func (srv *workLogService) LogEntry(ctx context.Context, input *usecase.WorkLogInput) (*entity.WorkLogRecord, error) {
	return srv.logEvent(ctx, input, entity.EventEntry)
}

// LogExit ends the user's open remote-work session.
func (srv *workLogService) LogExit(ctx context.Context, input *usecase.WorkLogInput) (*entity.WorkLogRecord, error) {
	return srv.logEvent(ctx, input, entity.EventExit)
}

func (srv *workLogService) logEvent(ctx context.Context, input *usecase.WorkLogInput, eventType entity.EventType) (*entity.WorkLogRecord, error) {
	srv.log(ctx).Debug("Logging remote-work event",
		slog.Any("userID", input.UserID),
		slog.String("type", eventType.String()))

	var created *entity.WorkLogRecord

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		workLogRepo := repoFactory.WorkLogRepo()

		if err := validateWorkLogDirection(ctx, workLogRepo, input.UserID, eventType); err != nil {
			return err
		}

		record := &entity.WorkLogRecord{
			UserID:      input.UserID,
			Type:        eventType,
			Timestamp:   time.Now(),
			Description: input.Description,
		}

		if err := workLogRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "failed to create work log record")
		}

		created = record

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Remote-work event rejected",
			slog.Any("userID", input.UserID),
			slog.String("type", eventType.String()),
			slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute work log transaction")
	}

	srv.log(ctx).Info("Remote-work event recorded",
		slog.Any("userID", input.UserID),
		slog.String("type", eventType.String()))

	return created, nil
}

// validateWorkLogDirection enforces start/stop pairing per user.
func validateWorkLogDirection(ctx context.Context, workLogRepo repository.WorkLogRepository, userID uuid.UUID, eventType entity.EventType) error {
	last, err := workLogRepo.FindLastByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrWorkLogNotFound) {
		return errors.Wrap(err, "failed to find last work log record")
	}

	switch eventType {
	case entity.EventEntry:
		if last != nil && last.Type == entity.EventEntry {
			return errors.Wrap(domainerrors.ErrWorkAlreadyStarted, "a work session is already open")
		}
	case entity.EventExit:
		if last == nil || last.Type == entity.EventExit {
			return errors.Wrap(domainerrors.ErrWorkNotStarted, "no open work session exists")
		}
	}

	return nil
}

// GetHistory retrieves the user's most recent work-log records, newest first.
func (srv *workLogService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.WorkLogRecord, error) {
	if limit <= 0 {
		limit = defaultWorkLogHistoryLimit
	}

	records, err := srv.workLogRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		srv.log(ctx).Error("Failed to get work log history", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find work log records")
	}

	return records, nil
}
