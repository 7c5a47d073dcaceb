package event

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRedisClient returns nil when no Redis address is configured; the
// publisher then runs outbox-only.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return client.Close()
		},
	})
	return client
}

func NewPublisher(db *gorm.DB, genID *snowflake.Node, rdb *redis.Client, log *zap.Logger, cfg config.Config) Publisher {
	return NewOutboxPublisher(db, genID, rdb, log, cfg.EventChannel)
}

var Module = fx.Module("event",
	fx.Provide(NewRedisClient),
	fx.Provide(NewPublisher),
)
