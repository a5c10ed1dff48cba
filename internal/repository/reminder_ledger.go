package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

const reminderKeyPrefix = "fee-reminder:"

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type reminderEntry struct {
	FeeRecordID string    `json:"fee_record_id"`
	RemindedAt  time.Time `json:"reminded_at"`
}

// ReminderLedger remembers when a fee record was last reminded so repeated
// reminder runs inside the cooldown skip it. Entries expire with the cooldown.
type ReminderLedger struct {
	client redisKV
	logger *zap.Logger
}

func NewReminderLedger(client redisKV, logger *zap.Logger) *ReminderLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderLedger{client: client, logger: logger}
}

// LastReminded returns appErrors.ErrCacheMiss when the record has no entry.
func (l *ReminderLedger) LastReminded(ctx context.Context, feeRecordID string) (time.Time, error) {
	if l.client == nil {
		return time.Time{}, appErrors.ErrCacheMiss
	}
	key := reminderKeyPrefix + feeRecordID
	raw, err := l.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, appErrors.ErrCacheMiss
		}
		return time.Time{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	var entry reminderEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		l.logger.Warn("discarding malformed reminder entry", zap.String("key", key), zap.Error(err))
		return time.Time{}, appErrors.ErrCacheMiss
	}
	return entry.RemindedAt, nil
}

// MarkReminded records at for the fee record with the given expiry.
func (l *ReminderLedger) MarkReminded(ctx context.Context, feeRecordID string, at time.Time, ttl time.Duration) error {
	if l.client == nil {
		return nil
	}
	key := reminderKeyPrefix + feeRecordID
	payload, err := json.Marshal(reminderEntry{FeeRecordID: feeRecordID, RemindedAt: at.UTC()})
	if err != nil {
		return fmt.Errorf("marshal reminder entry for %s: %w", key, err)
	}
	if err := l.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
