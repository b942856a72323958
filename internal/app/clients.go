package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tourconfig-backend/internal/data/db"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/platform/redis"
	"github.com/yungbote/tourconfig-backend/internal/realtime/bus"
)

type Clients struct {
	DB     *db.Service
	Bucket gcp.BucketService
	Redis  *goredis.Client
	SSEBus bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Database
	dbService, err := db.NewService(log, db.Config{
		Driver:           cfg.Database.Driver,
		PostgresHost:     cfg.Database.PostgresHost,
		PostgresPort:     cfg.Database.PostgresPort,
		PostgresUser:     cfg.Database.PostgresUser,
		PostgresPassword: cfg.Database.PostgresPassword,
		PostgresName:     cfg.Database.PostgresName,
		SQLitePath:       cfg.Database.SQLitePath,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureIndexes(dbService.DB()); err != nil {
		_ = dbService.Close()
		return Clients{}, fmt.Errorf("ensure indexes: %w", err)
	}
	out := Clients{DB: dbService}

	// Gcs
	bucket, err := resolveBucketService(log, cfg.Storage)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Bucket = bucket

	// Redis
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, log, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		sseBus, err := bus.NewRedisBus(log, rdb, cfg.Redis.SSEChannel)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.SSEBus = sseBus
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
