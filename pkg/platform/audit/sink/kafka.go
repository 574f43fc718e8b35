package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/circuit"
	"ledger/pkg/platform/sentinel"
)

// Producer is the subset of *kgo.Client the Kafka sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka publishes notifications to a topic keyed by audience, so every
// notification for one recipient lands on the same partition in order.
// A circuit breaker sheds load while the brokers are unreachable.
type Kafka struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type KafkaOption func(*Kafka)

func WithBreaker(b *circuit.Breaker) KafkaOption {
	return func(k *Kafka) {
		k.breaker = b
	}
}

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(k *Kafka) {
		k.logger = logger
	}
}

func NewKafka(producer Producer, topic string, opts ...KafkaOption) *Kafka {
	k := &Kafka{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(k)
	}
	if k.breaker == nil {
		k.breaker = circuit.New("kafka-audit")
	}
	if k.logger == nil {
		k.logger = slog.Default()
	}
	return k
}

func (k *Kafka) Deliver(ctx context.Context, event audit.Event) error {
	if !k.breaker.Allow() {
		return fmt.Errorf("kafka audit sink: %w", sentinel.ErrUnavailable)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(string(event.Audience.Type) + ":" + event.Audience.ID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}

	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := k.breaker.RecordFailure(); change.Opened {
			k.logger.WarnContext(ctx, "kafka audit circuit opened", "topic", k.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := k.breaker.RecordSuccess(); change.Closed {
		k.logger.InfoContext(ctx, "kafka audit circuit closed", "topic", k.topic)
	}
	return nil
}
