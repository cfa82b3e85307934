// Package kafka publishes resolution analytics events. Emission is fire and
// forget: a broker outage is logged and never surfaces to the asking user.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
)

// ResolutionEvent describes one answered query for downstream analytics.
type ResolutionEvent struct {
	QueryID     string    `json:"query_id"`
	UserID      string    `json:"user_id,omitempty"`
	Drug        string    `json:"drug,omitempty"`
	Section     string    `json:"section,omitempty"`
	Source      string    `json:"source,omitempty"` // resolution tier
	Outcome     string    `json:"outcome"`          // answered | substituted | clarification | guarded | smalltalk
	Substituted bool      `json:"substituted,omitempty"`
	At          time.Time `json:"at"`
}

// EventProducer writes resolution events to a Kafka topic. The zero-broker
// configuration yields a disabled producer whose Publish is a no-op, so
// callers never branch on whether analytics is wired.
type EventProducer struct {
	writer  *kafkago.Writer
	timeout time.Duration
	logger  logging.Logger
}

// NewEventProducer constructs a producer from configuration. Returns a
// disabled producer when no brokers are configured.
func NewEventProducer(cfg config.KafkaConfig, logger logging.Logger) *EventProducer {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &EventProducer{timeout: cfg.WriteTimeout, logger: logger.Named("events")}
	if len(cfg.Brokers) == 0 {
		return p
	}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				logger.Warn("event delivery failed",
					logging.Int("messages", len(messages)), logging.Err(err))
			}
		},
	}
	return p
}

// Publish emits one event keyed by user so per-user ordering holds within a
// partition. Safe to call on a disabled producer.
func (p *EventProducer) Publish(ctx context.Context, ev ResolutionEvent) {
	if p.writer == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event encode failed", logging.Err(err))
		return
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.UserID),
		Value: payload,
	}); err != nil {
		p.logger.Warn("event publish failed", logging.Err(err))
	}
}

// Close flushes and closes the underlying writer.
func (p *EventProducer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
