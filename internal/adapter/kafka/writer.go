package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/harara-heat/harara-dashboard/internal/config"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// publishTimeout bounds how long an operator request waits on the broker.
const publishTimeout = 3 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// AuditWriter publishes operator actions to the audit topic.
// It implements domain.ActionRecorder.
type AuditWriter struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the configured audit topic.
func NewAuditWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
	}
	return &AuditWriter{writer: w, metrics: metrics, logger: logger}
}

// Record publishes one action. The request context's cancellation is ignored
// so a closed browser tab does not drop the record.
func (w *AuditWriter) Record(ctx context.Context, action domain.OperatorAction) error {
	msg, err := serializeToMessage(action)
	if err != nil {
		w.metrics.AuditEvents.WithLabelValues("error").Inc()
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.AuditEvents.WithLabelValues("error").Inc()
		return fmt.Errorf("publish audit event: %w", err)
	}
	w.metrics.AuditEvents.WithLabelValues("published").Inc()
	w.logger.Debug("audit event published", "action", action.Action, "id", action.ID)
	return nil
}

func (w *AuditWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an OperatorAction into a Kafka message keyed by
// operator, so one operator's actions stay ordered within a partition.
func serializeToMessage(action domain.OperatorAction) (kafkago.Message, error) {
	data, err := json.Marshal(action)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize operator action: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(action.Operator),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(action.Action)},
			{Key: "outcome", Value: []byte(action.Outcome)},
			{Key: "occurred_at", Value: []byte(action.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
