package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/notam-briefing/internal/config"
	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces briefings to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple briefings to the sink topic in
// a single WriteMessages call. Briefings are keyed by request ID.
func (w *Writer) LoadBatch(ctx context.Context, briefings []domain.Briefing) error {
	if len(briefings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(briefings))
	for i := range briefings {
		msg, err := serializeToMessage(briefings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d briefings: %w", len(msgs), err)
	}
	w.logger.Debug("published briefings", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Briefing into a Kafka message.
func serializeToMessage(b domain.Briefing) (kafkago.Message, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize briefing %s: %w", b.RequestID, err)
	}
	return kafkago.Message{
		Key:   []byte(b.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte(b.RequestID)},
			{Key: "status", Value: []byte(b.Status)},
			{Key: "generated_at", Value: []byte(b.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
