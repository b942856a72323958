package app

import (
	"context"
	"fmt"

	"github.com/yungbote/tourconfig-backend/internal/http"
	httpH "github.com/yungbote/tourconfig-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tourconfig-backend/internal/http/middleware"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
)

const serviceName = "tourconfig"

func wireRouterConfig(log *logger.Logger, cfg Config, clients Clients, svcs Services, hub *realtime.SSEHub) http.RouterConfig {
	log.Info("Wiring handlers...")

	checks := []httpH.ReadinessCheck{
		{Name: "catalog", Check: func(context.Context) error {
			_, err := svcs.Catalog.Snapshot()
			return err
		}},
		{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
	}
	if clients.Redis != nil {
		checks = append(checks, httpH.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}})
	}

	rc := http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,

		AuthHandler:          httpH.NewAuthHandler(log, svcs.Auth, clients.Bucket),
		AuthMiddleware:       httpMW.NewAuthMiddleware(log, svcs.Auth),
		UserHandler:          httpH.NewUserHandler(log, svcs.User, clients.Bucket),
		RealtimeHandler:      httpH.NewRealtimeHandler(log, hub),
		CatalogHandler:       httpH.NewCatalogHandler(log, svcs.Configurator, clients.Bucket, cfg.TourAssetsViaProxy),
		SelectionHandler:     httpH.NewSelectionHandler(log, svcs.Configurator),
		ConfigurationHandler: httpH.NewConfigurationHandler(log, svcs.Configurations),
		HealthHandler:        httpH.NewHealthHandler(checks...),
	}
	if clients.Bucket != nil {
		rc.FileHandler = httpH.NewFileHandler(log, clients.Bucket)
	}
	return rc
}

func listenAddress(port string) string {
	return fmt.Sprintf(":%s", port)
}
