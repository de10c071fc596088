// Package kafka publishes onboarding lifecycle events. The event stream is
// an analytics side channel; publishing failures never fail the operation
// that produced the event.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// OnboardingEvent is the envelope for every event on the onboarding topic.
type OnboardingEvent struct {
	EventType    string          `json:"event_type"`
	AgentID      string          `json:"agent_id,omitempty"`
	SubmissionID string          `json:"submission_id,omitempty"`
	Detail       json.RawMessage `json:"detail,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// PublishOnboardingEvent publishes an event to the onboarding topic. The
// message is keyed by agent id so per-agent ordering holds.
func (p *Producer) PublishOnboardingEvent(ctx context.Context, event *OnboardingEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishOnboardingEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := event.AgentID
	if key == "" {
		key = event.SubmissionID
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish onboarding event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"agent_id":   event.AgentID,
	}).Debug("Published onboarding event")

	return nil
}
