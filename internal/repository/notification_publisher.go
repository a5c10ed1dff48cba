package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationPublisher hands messages to the delivery workers listening on a
// Redis channel. One message is published per recipient.
type NotificationPublisher struct {
	client  redisPublisher
	channel string
	logger  *zap.Logger
	now     func() time.Time
}

func NewNotificationPublisher(client redisPublisher, channel string, logger *zap.Logger) *NotificationPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationPublisher{client: client, channel: channel, logger: logger, now: time.Now}
}

// Dispatch publishes title and body to every non-blank recipient. A failed
// publish is counted and logged; the remaining recipients are still tried.
// Only a cancelled context aborts the batch.
func (p *NotificationPublisher) Dispatch(ctx context.Context, recipients []string, title, body string) (models.DispatchResult, error) {
	var result models.DispatchResult
	if p.client == nil {
		return result, fmt.Errorf("notification channel %q not configured", p.channel)
	}
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		msg := models.NotificationMessage{
			ID:        uuid.NewString(),
			Recipient: recipient,
			Title:     title,
			Body:      body,
			CreatedAt: p.now().UTC(),
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			return result, fmt.Errorf("marshal notification: %w", err)
		}
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			result.Failed++
			p.logger.Warn("publish notification failed",
				zap.String("channel", p.channel),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		result.Sent++
	}
	return result, nil
}
