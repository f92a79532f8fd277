package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "github.com/passgage/passgage-go/internal/delivery/context"
	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/domain/service"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultAccessHistoryLimit = 50

// accessService implements the AccessUsecase interface.
type accessService struct {
	txManager     repository.TransactionManager
	branchRepo    repository.BranchRepository
	entranceRepo  repository.EntranceRepository
	qrCodeService service.QRCodeService
	logger        *slog.Logger
}

// AccessServiceParams holds dependencies for accessService, injected by Fx.
type AccessServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	BranchRepo    repository.BranchRepository
	EntranceRepo  repository.EntranceRepository
	QRCodeService service.QRCodeService
	Logger        *slog.Logger
}

// NewAccessService is the constructor for accessService.
func NewAccessService(params AccessServiceParams) usecase.AccessUsecase {
	return &accessService{
		txManager:     params.TxManager,
		branchRepo:    params.BranchRepo,
		entranceRepo:  params.EntranceRepo,
		qrCodeService: params.QRCodeService,
		logger:        params.Logger,
	}
}

func (srv *accessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ValidateQR validates a scanned QR payload and records the resulting access event.
func (srv *accessService) ValidateQR(ctx context.Context, input *usecase.ValidateCodeInput) (*usecase.ScanOutput, error) {
	srv.log(ctx).Debug("Validating QR code", slog.Any("userID", input.UserID))

	code := input.Code
	if _, parsedCode, err := srv.qrCodeService.ParseEntranceQR(input.Code); err == nil {
		// Structured payloads carry the raw entrance code inside; plain codes pass through.
		code = parsedCode
	}

	branch, err := srv.branchRepo.FindByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			srv.log(ctx).Warn("QR validation failed: unknown code", slog.Any("userID", input.UserID))

			return nil, errors.Wrap(domainerrors.ErrInvalidQRCode, "no active branch matches the scanned code")
		}

		return nil, errors.Wrap(err, "failed to find branch by QR code")
	}

	return srv.recordAccessEvent(ctx, input, branch, entity.SourceQR)
}

// ValidateNFC validates a read NFC tag and records the resulting access event.
func (srv *accessService) ValidateNFC(ctx context.Context, input *usecase.ValidateCodeInput) (*usecase.ScanOutput, error) {
	srv.log(ctx).Debug("Validating NFC tag", slog.Any("userID", input.UserID))

	branch, err := srv.branchRepo.FindByNFCTag(ctx, input.Code)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			srv.log(ctx).Warn("NFC validation failed: unknown tag", slog.Any("userID", input.UserID))

			return nil, errors.Wrap(domainerrors.ErrInvalidNFCTag, "no active branch matches the read tag")
		}

		return nil, errors.Wrap(err, "failed to find branch by NFC tag")
	}

	return srv.recordAccessEvent(ctx, input, branch, entity.SourceNFC)
}

// GetHistory retrieves the user's most recent access events, newest first.
func (srv *accessService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Entrance, error) {
	if limit <= 0 {
		limit = defaultAccessHistoryLimit
	}

	records, err := srv.entranceRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		srv.log(ctx).Error("Failed to get access history", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find entrance records")
	}

	return records, nil
}

// recordAccessEvent creates the entrance record for a validated scan.
// Direction alternates with the user's previous event at the same branch.
func (srv *accessService) recordAccessEvent(ctx context.Context, input *usecase.ValidateCodeInput, branch *entity.Branch, source entity.EntranceSource) (*usecase.ScanOutput, error) {
	var created *entity.Entrance

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entranceRepo := repoFactory.EntranceRepo()

		eventType, err := nextEventType(ctx, entranceRepo, input.UserID, branch.ID)
		if err != nil {
			return err
		}

		newEntrance := &entity.Entrance{
			UserID:    input.UserID,
			BranchID:  branch.ID,
			Type:      eventType,
			Source:    source,
			Timestamp: time.Now(),
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
		}

		if err := entranceRepo.Create(ctx, newEntrance); err != nil {
			return errors.Wrap(err, "failed to create entrance record")
		}

		created = newEntrance

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute access event transaction",
			slog.Any("userID", input.UserID), slog.Any("branchID", branch.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute access event transaction")
	}

	srv.log(ctx).Info("Access event recorded",
		slog.Any("userID", input.UserID),
		slog.Any("branchID", branch.ID),
		slog.String("type", created.Type.String()),
		slog.String("source", string(source)))

	return &usecase.ScanOutput{Entrance: created, Branch: branch}, nil
}

// nextEventType derives the direction of a new scan from the user's latest
// event at the branch. A first-ever scan is an entry.
func nextEventType(ctx context.Context, entranceRepo repository.EntranceRepository, userID, branchID uuid.UUID) (entity.EventType, error) {
	last, err := entranceRepo.FindLastByUserAndBranch(ctx, userID, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrEntranceNotFound) {
			return entity.EventEntry, nil
		}

		return "", errors.Wrap(err, "failed to find last entrance")
	}

	return last.Type.Opposite(), nil
}
