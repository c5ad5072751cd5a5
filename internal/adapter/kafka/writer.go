package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rotisserie/eris"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/waterpoints-service/internal/config"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
)

// Writer publishes stored reports to a Kafka topic so downstream
// maintenance tooling can pick them up.
// It implements report.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured reports topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportsTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishReport writes one report event keyed by water point, so all
// reports for a point land on the same partition in order.
func (w *Writer) PublishReport(ctx context.Context, r domain.Report) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return eris.Wrapf(err, "kafka: publish report %s", r.ID)
	}
	w.logger.Debug("report event published", "report_id", r.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message.
func serializeToMessage(r domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, eris.Wrap(err, "serialize report")
	}
	return kafkago.Message{
		Key:   []byte(r.WaterpuntID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "issue_type", Value: []byte(r.IssueType)},
			{Key: "created_at", Value: []byte(r.CreatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
