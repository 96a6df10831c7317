package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/config"
	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes dataset-loaded events to a Kafka topic.
// It implements pipeline.Notifier.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured dataset topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// NotifyDatasetLoaded serializes and publishes one event. The key is the
// dataset checksum so consumers can compact by content.
func (w *Writer) NotifyDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish dataset event: %w", err)
	}
	w.logger.Debug("dataset event published", "topic", w.writer.Topic, "checksum", event.Checksum)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DatasetLoaded event into a Kafka message.
func serializeToMessage(event domain.DatasetLoaded) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dataset event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Checksum),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rows_kept", Value: []byte(strconv.Itoa(event.RowsKept))},
			{Key: "loaded_at", Value: []byte(event.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
