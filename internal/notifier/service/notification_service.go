package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/notifier/config"
	"golang-stock-ledger/pkg/common"
	"golang-stock-ledger/pkg/logger"
	"golang-stock-ledger/pkg/telegram"

	"github.com/redis/go-redis/v9"
)

// NotificationService forwards ledger events from Redis streams to Telegram.
type NotificationService interface {
	ProcessTrades(ctx context.Context)
	ProcessAlerts(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

type messageHandler func(ctx context.Context, payload string) error

// errMalformed marks a message that can never be delivered.
var errMalformed = errors.New("malformed stream message")

type notificationService struct {
	cfg         *config.Config
	redisClient *redis.Client
	notifier    telegram.Notifier
	log         *logger.Logger
	handlers    map[string]messageHandler
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(cfg *config.Config, redisClient *redis.Client, notifier telegram.Notifier, log *logger.Logger) NotificationService {
	s := &notificationService{
		cfg:         cfg,
		redisClient: redisClient,
		notifier:    notifier,
		log:         log,
	}
	s.handlers = map[string]messageHandler{
		common.RedisStreamTradeExecuted: s.handleTrade,
		common.RedisStreamAuditAlert:    s.handleAlert,
	}
	return s
}

// ProcessTrades reads one batch of trade events and notifies each of them.
func (s *notificationService) ProcessTrades(ctx context.Context) {
	s.processStream(ctx, common.RedisStreamTradeExecuted)
}

// ProcessAlerts reads one batch of audit alerts and notifies each of them.
func (s *notificationService) ProcessAlerts(ctx context.Context) {
	s.processStream(ctx, common.RedisStreamAuditAlert)
}

// ProcessRetries claims messages left pending longer than the configured idle
// time and delivers them again. Messages past the retry limit are dropped.
func (s *notificationService) ProcessRetries(ctx context.Context) {
	for stream := range s.handlers {
		s.retryStream(ctx, stream)
	}
}

func (s *notificationService) processStream(ctx context.Context, stream string) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{stream, ">"}, // ">" means only new messages
		Count:    s.cfg.Notifier.BatchSize,
		Block:    s.cfg.Notifier.BlockTimeout,
	}).Result()
	if err != nil {
		// idle periods and shutdown are expected
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err), logger.StringField("stream", stream))
		return
	}

	for _, st := range streams {
		for _, message := range st.Messages {
			s.deliver(ctx, stream, message)
		}
	}
}

func (s *notificationService) deliver(ctx context.Context, stream string, message redis.XMessage) {
	err := s.handle(ctx, stream, message)
	if err != nil && !errors.Is(err, errMalformed) {
		// left pending, picked up again by ProcessRetries
		s.log.Error("Failed to deliver notification", logger.ErrorField(err), logger.StringField("stream", stream), logger.StringField("message_id", message.ID))
		return
	}
	if err != nil {
		s.log.Error("Dropping malformed message", logger.ErrorField(err), logger.StringField("stream", stream), logger.StringField("message_id", message.ID))
	}
	if err := s.redisClient.XAck(ctx, stream, common.RedisStreamGroup, message.ID).Err(); err != nil {
		s.log.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("stream", stream), logger.StringField("message_id", message.ID))
	}
}

func (s *notificationService) handle(ctx context.Context, stream string, message redis.XMessage) error {
	payload, ok := message.Values[common.RedisStreamPayloadField].(string)
	if !ok {
		return fmt.Errorf("%w: field %q not found or not a string", errMalformed, common.RedisStreamPayloadField)
	}
	handler, ok := s.handlers[stream]
	if !ok {
		return fmt.Errorf("%w: no handler for stream %s", errMalformed, stream)
	}
	return handler(ctx, payload)
}

func (s *notificationService) retryStream(ctx context.Context, stream string) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Notifier.MaxIdle,
		Start:    "0",
		Count:    s.cfg.Notifier.BatchSize,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim pending messages", logger.ErrorField(err), logger.StringField("stream", stream))
		return
	}

	for _, msg := range msgs {
		pending, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: stream,
			Group:  common.RedisStreamGroup,
			Start:  msg.ID,
			End:    msg.ID,
			Count:  1,
		}).Result()
		if err != nil {
			s.log.Error("Failed to get pending info", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
			continue
		}

		if len(pending) > 0 && pending[0].RetryCount > s.cfg.Notifier.MaxRetry {
			s.log.Error("Notification retry count exceeded",
				logger.StringField("stream", stream),
				logger.StringField("message_id", msg.ID),
				logger.Int64Field("retry_count", pending[0].RetryCount),
			)
			if err := s.redisClient.XAck(ctx, stream, common.RedisStreamGroup, msg.ID).Err(); err != nil {
				s.log.Error("Failed to acknowledge message", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
			}
			continue
		}

		s.deliver(ctx, stream, msg)
	}
}

func (s *notificationService) handleTrade(_ context.Context, payload string) error {
	var event entity.TradeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	s.log.Debug("Notifying trade", logger.StringField("reference", event.Reference), logger.StringField("symbol", event.Symbol))
	return s.notifier.SendMessage(telegram.FormatTradeMessage(&event, s.cfg.Notifier.Currency))
}

func (s *notificationService) handleAlert(_ context.Context, payload string) error {
	var alert entity.AuditAlert
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return s.notifier.SendMessage(telegram.FormatAuditAlertMessage(&alert))
}
