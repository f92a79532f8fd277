package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/passgage/passgage-go/config"
	"github.com/passgage/passgage-go/internal/delivery"
	"github.com/passgage/passgage-go/internal/delivery/api"
	apimiddleware "github.com/passgage/passgage-go/internal/delivery/api/middleware"
	"github.com/passgage/passgage-go/internal/delivery/api/router/handler"
	"github.com/passgage/passgage-go/internal/domain/service"
	"github.com/passgage/passgage-go/internal/infra/auth"
	logs "github.com/passgage/passgage-go/internal/infra/log"
	"github.com/passgage/passgage-go/internal/infra/persistence/postgres"
	"github.com/passgage/passgage-go/internal/infra/qrcode"
	"github.com/passgage/passgage-go/internal/usecase"
	"github.com/passgage/passgage-go/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := runSeedCommand(os.Args[2:]); err != nil {
			slog.Error("Seeding failed", slog.Any("error", err))
			os.Exit(1)
		}

		return
	}

	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
			startSessionCleanup,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewBranchRepository,
			postgres.NewEntranceRepository,
			postgres.NewWorkLogRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewAccessService,
			impl.NewBranchService,
			impl.NewWorkLogService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
			apimiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAccessHandler,
			handler.NewBranchHandler,
			handler.NewWorkLogHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}

const defaultSessionCleanupInterval = time.Hour

type sessionCleanupParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// startSessionCleanup runs the expired refresh token purge on a fixed interval.
func startSessionCleanup(params sessionCleanupParams) {
	interval := defaultSessionCleanupInterval
	if params.Config.Auth != nil && params.Config.Auth.SessionCleanupInterval > 0 {
		interval = params.Config.Auth.SessionCleanupInterval
	}

	cleanupCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runSessionCleanup(cleanupCtx, params.AuthUC, params.Logger, interval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})
}

func runSessionCleanup(ctx context.Context, authUC usecase.AuthUsecase, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authUC.CleanupExpiredSessions(ctx); err != nil {
				logger.Error("Session cleanup failed", slog.Any("error", err))
			}
		}
	}
}
