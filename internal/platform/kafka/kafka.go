// Package kafka builds the franz-go producer for audit notifications and
// makes sure the destination topic exists.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"ledger/internal/platform/config"
)

// DefaultDeliveryTimeout bounds how long a record may be retried.
const DefaultDeliveryTimeout = 10 * time.Second

// NewClient returns a producer client, or (nil, nil) when no brokers are
// configured. Records that cannot be delivered within cfg.DeliveryTimeout
// fail instead of being retried forever.
func NewClient(ctx context.Context, cfg config.Kafka) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(deliveryTimeout(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the audit topic when it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, cfg config.Kafka, logger *slog.Logger) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, cfg.Partitions, cfg.ReplicationFactor, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, err)
	}
	for _, resp := range resps {
		switch {
		case resp.Err == nil:
			logger.InfoContext(ctx, "created kafka topic", "topic", resp.Topic, "partitions", cfg.Partitions)
		case errors.Is(resp.Err, kerr.TopicAlreadyExists):
		default:
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func deliveryTimeout(cfg config.Kafka) time.Duration {
	if cfg.DeliveryTimeout > 0 {
		return cfg.DeliveryTimeout
	}
	return DefaultDeliveryTimeout
}
