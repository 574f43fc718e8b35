package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "ledger/pkg/domain"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/circuit"
	"ledger/pkg/platform/sentinel"
)

type fakeProducer struct {
	err     error
	records []*kgo.Record
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaSink(t *testing.T) {
	ctx := context.Background()
	userID := id.NewUserID()
	event := audit.Event{Kind: audit.KindDataAccessed, Audience: audit.ToUser(userID), Message: "read"}

	t.Run("publishes keyed by audience", func(t *testing.T) {
		producer := &fakeProducer{}
		k := NewKafka(producer, "ledger.audit")

		require.NoError(t, k.Deliver(ctx, event))
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "ledger.audit", rec.Topic)
		assert.Equal(t, "user:"+userID.String(), string(rec.Key))

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, audit.KindDataAccessed, decoded.Kind)
	})

	t.Run("open circuit sheds deliveries", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker down")}
		k := NewKafka(producer, "ledger.audit", WithBreaker(circuit.New("test", circuit.WithFailureThreshold(1))))

		err := k.Deliver(ctx, event)
		require.Error(t, err)

		err = k.Deliver(ctx, event)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
