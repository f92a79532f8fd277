package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/passgage/passgage-go/config"
	deliverycontext "github.com/passgage/passgage-go/internal/delivery/context"
	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/domain/service"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// branchService implements the BranchUsecase interface.
type branchService struct {
	txManager        repository.TransactionManager
	branchRepo       repository.BranchRepository
	qrCodeService    service.QRCodeService
	defaultRadiusM   float64
	maxRadiusM       float64
	defaultGeofenceM float64
	logger           *slog.Logger
}

// BranchServiceParams holds dependencies for branchService, injected by Fx.
type BranchServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	BranchRepo    repository.BranchRepository
	QRCodeService service.QRCodeService
	Config        *config.Config
	Logger        *slog.Logger
}

// NewBranchService is the constructor for branchService.
func NewBranchService(params BranchServiceParams) usecase.BranchUsecase {
	srv := &branchService{
		txManager:     params.TxManager,
		branchRepo:    params.BranchRepo,
		qrCodeService: params.QRCodeService,
		logger:        params.Logger,
	}
	if params.Config != nil && params.Config.AccessControl != nil {
		srv.defaultRadiusM = params.Config.AccessControl.DefaultRadiusM
		srv.maxRadiusM = params.Config.AccessControl.MaxRadiusM
		srv.defaultGeofenceM = params.Config.AccessControl.DefaultGeofenceM
	}

	return srv
}

func (srv *branchService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetNearbyBranches returns the company's active branches within the radius,
// closest first. An empty slice is a valid result.
func (srv *branchService) GetNearbyBranches(ctx context.Context, input *usecase.NearbyBranchesInput) ([]*entity.Branch, error) {
	radius := srv.clampRadius(input.RadiusM)

	srv.log(ctx).Debug("Searching nearby branches",
		slog.Any("companyID", input.CompanyID),
		slog.Float64("radiusM", radius))

	branches, err := srv.branchRepo.FindActiveByCompany(ctx, input.CompanyID)
	if err != nil {
		srv.log(ctx).Error("Failed to load company branches", slog.Any("companyID", input.CompanyID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find active branches")
	}

	origin := orb.Point{input.Longitude, input.Latitude}
	nearby := make([]*entity.Branch, 0, len(branches))

	for _, branch := range branches {
		distance := geo.Distance(origin, orb.Point{branch.Longitude, branch.Latitude})
		if distance > radius {
			continue
		}
		branch.DistanceM = distance
		nearby = append(nearby, branch)
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceM < nearby[j].DistanceM
	})

	srv.log(ctx).Debug("Nearby branch search completed",
		slog.Any("companyID", input.CompanyID),
		slog.Int("matches", len(nearby)))

	return nearby, nil
}

// clampRadius resolves a requested radius against the configured bounds.
func (srv *branchService) clampRadius(requested float64) float64 {
	radius := requested
	if radius <= 0 {
		radius = srv.defaultRadiusM
	}
	if srv.maxRadiusM > 0 && radius > srv.maxRadiusM {
		radius = srv.maxRadiusM
	}

	return radius
}

// CheckInEntry records an entry event at a branch after geofence validation.
func (srv *branchService) CheckInEntry(ctx context.Context, input *usecase.CheckInInput) (*entity.Entrance, error) {
	return srv.checkIn(ctx, input, entity.EventEntry)
}

// CheckInExit records an exit event at a branch after geofence validation.
func (srv *branchService) CheckInExit(ctx context.Context, input *usecase.CheckInInput) (*entity.Entrance, error) {
	return srv.checkIn(ctx, input, entity.EventExit)
}

func (srv *branchService) checkIn(ctx context.Context, input *usecase.CheckInInput, eventType entity.EventType) (*entity.Entrance, error) {
	srv.log(ctx).Debug("Starting check-in",
		slog.Any("userID", input.UserID),
		slog.Any("branchID", input.BranchID),
		slog.String("type", eventType.String()))

	branch, err := srv.branchRepo.FindByID(ctx, input.BranchID)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			return nil, errors.Wrap(domainerrors.ErrBranchNotFound, "check-in failed")
		}

		return nil, errors.Wrap(err, "failed to find branch")
	}
	if !branch.IsActive {
		return nil, errors.Wrap(domainerrors.ErrBranchNotFound, "branch is inactive")
	}

	if err := srv.enforceGeofence(ctx, input, branch); err != nil {
		return nil, err
	}

	var created *entity.Entrance

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entranceRepo := repoFactory.EntranceRepo()

		if err := validateCheckInDirection(ctx, entranceRepo, input.UserID, branch.ID, eventType); err != nil {
			return err
		}

		newEntrance := &entity.Entrance{
			UserID:    input.UserID,
			BranchID:  branch.ID,
			Type:      eventType,
			Source:    entity.SourceCheckIn,
			Timestamp: time.Now(),
			Latitude:  &input.Latitude,
			Longitude: &input.Longitude,
		}

		if err := entranceRepo.Create(ctx, newEntrance); err != nil {
			return errors.Wrap(err, "failed to create entrance record")
		}

		created = newEntrance

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Check-in rejected",
			slog.Any("userID", input.UserID),
			slog.Any("branchID", input.BranchID),
			slog.String("type", eventType.String()),
			slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute check-in transaction")
	}

	srv.log(ctx).Info("Check-in recorded",
		slog.Any("userID", input.UserID),
		slog.Any("branchID", branch.ID),
		slog.String("type", eventType.String()))

	return created, nil
}

// enforceGeofence rejects check-ins from outside the branch's geofence radius.
// The geofence is independent of whatever radius the client searched with.
func (srv *branchService) enforceGeofence(ctx context.Context, input *usecase.CheckInInput, branch *entity.Branch) error {
	geofence := branch.GeofenceM
	if geofence <= 0 {
		geofence = srv.defaultGeofenceM
	}

	distance := geo.Distance(
		orb.Point{input.Longitude, input.Latitude},
		orb.Point{branch.Longitude, branch.Latitude},
	)
	if distance > geofence {
		srv.log(ctx).Warn("Check-in outside geofence",
			slog.Any("userID", input.UserID),
			slog.Any("branchID", branch.ID),
			slog.Float64("distanceM", distance),
			slog.Float64("geofenceM", geofence))

		return errors.Wrap(domainerrors.ErrOutsideGeofence, "device location is outside the branch geofence")
	}

	return nil
}

// validateCheckInDirection enforces entry/exit pairing for location check-ins.
// Unlike QR and NFC scans, an explicit check-in never silently flips direction.
func validateCheckInDirection(ctx context.Context, entranceRepo repository.EntranceRepository, userID, branchID uuid.UUID, eventType entity.EventType) error {
	last, err := entranceRepo.FindLastByUserAndBranch(ctx, userID, branchID)
	if err != nil && !errors.Is(err, repository.ErrEntranceNotFound) {
		return errors.Wrap(err, "failed to find last entrance")
	}

	switch eventType {
	case entity.EventEntry:
		if last != nil && last.Type == entity.EventEntry {
			return errors.Wrap(domainerrors.ErrAlreadyCheckedIn, "an open entry already exists at this branch")
		}
	case entity.EventExit:
		if last == nil || last.Type == entity.EventExit {
			return errors.Wrap(domainerrors.ErrNotCheckedIn, "no open entry exists at this branch")
		}
	}

	return nil
}

// GetEntranceQR renders the branch's entrance code as a PNG QR image.
func (srv *branchService) GetEntranceQR(ctx context.Context, branchID uuid.UUID) ([]byte, error) {
	branch, err := srv.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			return nil, errors.Wrap(domainerrors.ErrBranchNotFound, "entrance QR lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find branch")
	}

	png, err := srv.qrCodeService.GenerateEntranceQR(branch.ID, branch.QRCode)
	if err != nil {
		srv.log(ctx).Error("Failed to render entrance QR", slog.Any("branchID", branchID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate entrance QR image")
	}

	return png, nil
}
