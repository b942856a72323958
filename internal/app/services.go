package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/data/selectionstore"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type Services struct {
	Catalog        *configurator.Store
	Selections     selectionstore.Store
	Emitter        services.SSEEmitter
	Configurator   services.ConfiguratorService
	Avatar         services.AvatarService
	Auth           services.AuthService
	User           services.UserService
	Configurations services.ConfigurationService
}

func catalogSource(cfg Config, clients Clients) configurator.Source {
	if prefix := strings.TrimSpace(cfg.Catalog.BucketPrefix); prefix != "" && clients.Bucket != nil {
		return configurator.BucketSource{Bucket: clients.Bucket, Prefix: prefix}
	}
	return configurator.DirSource{Dir: cfg.Catalog.Dir}
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	catalog := configurator.NewStore(log, catalogSource(cfg, clients))

	var selections selectionstore.Store
	if clients.Redis != nil {
		selections = selectionstore.NewRedisStore(clients.Redis, cfg.SelectionTTL, cfg.Redis.KeyPrefix)
	} else {
		selections = selectionstore.NewMemoryStore(cfg.SelectionTTL)
	}

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Hub: hub, Log: log.With("service", "RedisEmitter")}
	}

	configuratorService := services.NewConfiguratorService(log, catalog, selections, services.NewSessionNotifier(emitter))

	// avatars land in the avatar bucket, which falls back to the tour bucket
	avatarService, err := services.NewAvatarService(log, clients.Bucket, services.AvatarConfig{
		FontPath:       cfg.AvatarFontPath,
		ColorsJSONPath: cfg.AvatarColorsPath,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}
	authService := services.NewAuthService(
		clients.DB.DB(),
		log,
		reposet.User,
		avatarService,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.AdminEmails,
	)

	return Services{
		Catalog:        catalog,
		Selections:     selections,
		Emitter:        emitter,
		Configurator:   configuratorService,
		Avatar:         avatarService,
		Auth:           authService,
		User:           services.NewUserService(log, reposet.User, avatarService),
		Configurations: services.NewConfigurationService(log, reposet.SavedConfiguration, configuratorService),
	}, nil
}
