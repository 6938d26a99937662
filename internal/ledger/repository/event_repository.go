package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/pkg/common"

	"github.com/redis/go-redis/v9"
)

// EventRepository publishes ledger events on Redis streams.
type EventRepository interface {
	PublishTrade(ctx context.Context, event *entity.TradeEvent) error
	PublishAuditAlert(ctx context.Context, alert *entity.AuditAlert) error
}

type eventRepository struct {
	redis  *redis.Client
	maxLen int64
}

func NewEventRepository(redisClient *redis.Client, maxLen int64) EventRepository {
	return &eventRepository{redis: redisClient, maxLen: maxLen}
}

func (r *eventRepository) PublishTrade(ctx context.Context, event *entity.TradeEvent) error {
	return r.publish(ctx, common.RedisStreamTradeExecuted, event)
}

func (r *eventRepository) PublishAuditAlert(ctx context.Context, alert *entity.AuditAlert) error {
	return r.publish(ctx, common.RedisStreamAuditAlert, alert)
}

func (r *eventRepository) publish(ctx context.Context, stream string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", stream, err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{common.RedisStreamPayloadField: payload},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return nil
}
