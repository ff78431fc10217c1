// Package notify delivers best-effort event envelopes to the push delivery
// worker over a Redis list. Delivery is fire and forget: a failed enqueue is
// the caller's problem to log and nobody retries it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope is the wire format consumed by the delivery worker.
type Envelope struct {
	ID          string                 `json:"id"`
	Event       string                 `json:"event"`
	RecipientID string                 `json:"recipientId"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// RedisDispatcher pushes envelopes onto a Redis list.
type RedisDispatcher struct {
	client   *redis.Client
	queueKey string
}

func NewRedisDispatcher(client *redis.Client, queueName string) *RedisDispatcher {
	return &RedisDispatcher{
		client:   client,
		queueKey: fmt.Sprintf("notify:%s", queueName),
	}
}

// Enqueue pushes one envelope. Errors are returned for the caller to log;
// they never block or fail the triggering operation.
func (d *RedisDispatcher) Enqueue(ctx context.Context, event, recipientID string, payload map[string]interface{}) error {
	envelope := Envelope{
		ID:          uuid.NewString(),
		Event:       event,
		RecipientID: recipientID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := d.client.LPush(ctx, d.queueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// LogDispatcher is the fallback when Redis is not configured; events are only
// logged.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Enqueue(_ context.Context, event, recipientID string, payload map[string]interface{}) error {
	d.logger.Info("Notification (log only)",
		zap.String("event", event),
		zap.String("recipient", recipientID),
		zap.Any("payload", payload))
	return nil
}
