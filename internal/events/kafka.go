package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter publishes events as JSON messages keyed by event type.
type KafkaEmitter struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaEmitter builds an emitter writing to topic on the given brokers.
func NewKafkaEmitter(brokers []string, topic string, timeout time.Duration) *KafkaEmitter {
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 250 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		timeout: timeout,
	}
}

// Emit publishes the event, bounding the write with the configured timeout.
// Failures are logged, never surfaced.
func (e *KafkaEmitter) Emit(ctx context.Context, eventType string, payload map[string]any) {
	body, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
		"at":      time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("event marshal failed", "type", eventType, "err", err)
		return
	}

	// Key by product so per-product event order survives partitioning.
	key := eventType
	if pid, ok := payload["product_id"].(string); ok && pid != "" {
		key = pid
	}

	wctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	err = e.writer.WriteMessages(wctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("event publish failed", "type", eventType, "err", err)
	}
}

// Close flushes and closes the underlying writer.
func (e *KafkaEmitter) Close() error { return e.writer.Close() }
