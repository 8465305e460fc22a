package main

import (
	"context"
	"log/slog"
	"os"

	"partsgate/config"
	"partsgate/internal/delivery"
	"partsgate/internal/delivery/http"
	"partsgate/internal/delivery/http/middleware"
	"partsgate/internal/delivery/http/router/handler"
	"partsgate/internal/domain/service"
	"partsgate/internal/infra/api"
	"partsgate/internal/infra/auth"
	logs "partsgate/internal/infra/log"
	"partsgate/internal/infra/notification"
	"partsgate/internal/infra/payment"
	"partsgate/internal/infra/qrcode"
	"partsgate/internal/infra/storage"
	"partsgate/internal/usecase"
	"partsgate/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
	Session    usecase.SessionUsecase
	Logger     *slog.Logger
}

func main() {
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
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		api.NewClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			storage.NewCredentialStore,
			storage.NewKeyStore,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewTokenManager,
			auth.NewInspector,
			notification.NewCenter,
			notification.NewNotifier,
			notification.NewRecorder,
			notification.NewNavigator,
			payment.NewProvider,
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
			impl.NewSessionService,
			impl.NewCartService,
			impl.NewCheckoutService,
			impl.NewIdempotencyService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewCartHandler,
			handler.NewCheckoutHandler,
			handler.NewNotificationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	// Rehydrate the persisted session before any surface attaches.
	if err := params.Session.Initialize(ctx); err != nil {
		params.Logger.Warn("session rehydration failed", slog.Any("error", err))
	}

	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
