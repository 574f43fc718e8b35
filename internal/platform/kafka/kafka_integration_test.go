//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"ledger/internal/platform/config"
	"ledger/internal/platform/kafka"
	id "ledger/pkg/domain"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/audit/sink"
	"ledger/pkg/testutil/containers"
)

type KafkaSuite struct {
	suite.Suite
	cfg    config.Kafka
	client *kgo.Client
	logger *slog.Logger
}

func TestKafkaSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSuite))
}

func (s *KafkaSuite) SetupSuite() {
	broker := containers.GetManager().GetRedpanda(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.cfg = config.Kafka{
		Brokers:           []string{broker.Broker},
		Topic:             "ledger.audit.test",
		ClientID:          "ledger-test",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	var err error
	s.client, err = kafka.NewClient(context.Background(), s.cfg)
	s.Require().NoError(err)
	s.Require().NotNil(s.client)
}

func (s *KafkaSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaSuite) TestNoBrokersMeansNoClient() {
	client, err := kafka.NewClient(context.Background(), config.Kafka{})
	s.NoError(err)
	s.Nil(client)
}

func (s *KafkaSuite) TestEnsureTopicIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, s.cfg, s.logger))
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, s.cfg, s.logger))
}

func (s *KafkaSuite) TestSinkPublishesKeyedByAudience() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, s.cfg, s.logger))

	org := id.NewOrganizationID()
	event := audit.Event{
		Kind:       audit.KindViolationDetected,
		Audience:   audit.ToOrganization(org),
		Title:      "Compliance violation detected",
		Message:    "Unauthorized read of financial data without valid consent",
		OccurredAt: time.Now().UTC(),
	}
	s.Require().NoError(sink.NewKafka(s.client, s.cfg.Topic, sink.WithKafkaLogger(s.logger)).Deliver(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.cfg.Brokers...),
		kgo.ConsumeTopics(s.cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	wantKey := "organization:" + org.String()
	for {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "event never arrived")
		var found *kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == wantKey {
				found = r
			}
		})
		if found == nil {
			continue
		}
		var got audit.Event
		s.Require().NoError(json.Unmarshal(found.Value, &got))
		s.Equal(audit.KindViolationDetected, got.Kind)
		s.Equal(event.Message, got.Message)
		return
	}
}
