package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type outboxPublisher struct {
	db      *gorm.DB
	genID   *snowflake.Node
	redis   *redis.Client
	log     *zap.Logger
	channel string
}

// NewOutboxPublisher persists every event to the domain_events outbox and
// fans it out over Redis pub/sub when a client is configured. The outbox
// write is the durable record; the Redis publish is opportunistic.
func NewOutboxPublisher(db *gorm.DB, genID *snowflake.Node, rdb *redis.Client, log *zap.Logger, channel string) Publisher {
	return &outboxPublisher{
		db:      db,
		genID:   genID,
		redis:   rdb,
		log:     log.Named("event.publisher"),
		channel: channel,
	}
}

func (p *outboxPublisher) PublishModuleToggled(ctx context.Context, evt ModuleToggledEvent) error {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(evt.TenantID))
	if err != nil || tenantID == 0 {
		return fmt.Errorf("invalid tenant id %q", evt.TenantID)
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	record := DomainEvent{
		ID:        p.genID.Generate(),
		TenantID:  tenantID,
		EventType: evt.Topic(),
		Payload:   datatypes.JSON(payload),
		Published: false,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}

	if p.redis == nil {
		return nil
	}

	if err := p.redis.Publish(ctx, publishChannel(p.channel, evt.Topic()), payload).Err(); err != nil {
		p.log.Warn("redis publish failed, event left in outbox",
			zap.String("topic", evt.Topic()),
			zap.String("tenant_id", evt.TenantID),
			zap.Error(err),
		)
		return nil
	}

	if err := p.db.WithContext(ctx).
		Model(&DomainEvent{}).
		Where("id = ?", record.ID).
		Update("published", true).Error; err != nil {
		p.log.Warn("failed to mark event published", zap.Error(err))
	}
	return nil
}

// publishChannel qualifies the configured channel with the event topic so
// consumers can subscribe per topic (or pattern-subscribe to the prefix)
// without inspecting payloads.
func publishChannel(channel, topic string) string {
	return channel + ":" + topic
}
