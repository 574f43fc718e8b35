package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "ledger/pkg/domain"
	audit "ledger/pkg/platform/audit"
	"ledger/pkg/platform/audit/sink"
	"ledger/pkg/platform/audit/store/memory"
	"ledger/pkg/platform/circuit"
	"ledger/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store})
	defer pub.Close()

	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixed), "req-7")
	userID := id.NewUserID()

	err := pub.Emit(ctx, audit.Event{Kind: audit.KindConsentGranted, Audience: audit.ToUser(userID)})
	require.NoError(t, err)

	events, err := store.ListByAudience(ctx, audit.ToUser(userID))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.KindConsentGranted, events[0].Kind)
	assert.Equal(t, fixed, events[0].OccurredAt)
	assert.Equal(t, "req-7", events[0].RequestID)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{store}, WithAsyncBuffer(10))

	orgID := id.NewOrganizationID()
	err := pub.Emit(context.Background(), audit.Event{Kind: audit.KindViolationDetected, Audience: audit.ToOrganization(orgID)})
	require.NoError(t, err)

	// Close drains the buffer.
	require.NoError(t, pub.Close())

	events, err := store.ListByAudience(context.Background(), audit.ToOrganization(orgID))
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestPublisher_AsyncBufferFullDrops(t *testing.T) {
	release := make(chan struct{})
	blocking := audit.SinkFunc(func(ctx context.Context, _ audit.Event) error {
		<-release
		return nil
	})
	pub := New([]audit.Sink{blocking}, WithAsyncBuffer(1))

	evt := audit.Event{Kind: audit.KindDataAccessed, Audience: audit.ToUser(id.NewUserID())}

	// The first event is picked up by the drain goroutine or fills the buffer;
	// keep emitting until the buffer reports full.
	var sawFull bool
	for i := 0; i < 10 && !sawFull; i++ {
		sawFull = errors.Is(pub.Emit(context.Background(), evt), ErrBufferFull)
	}
	assert.True(t, sawFull)

	close(release)
	require.NoError(t, pub.Close())
}

// stalledProducer never acknowledges a record until its context ends, like
// a client retrying against unreachable brokers.
type stalledProducer struct{}

func (stalledProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	<-ctx.Done()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: ctx.Err()})
	}
	return results
}

func TestPublisher_StalledKafkaSinkDoesNotWedgeDrain(t *testing.T) {
	store := memory.NewInMemoryStore()
	breaker := circuit.New("kafka-audit", circuit.WithFailureThreshold(1))
	kafka := sink.NewKafka(stalledProducer{}, "ledger.audit", sink.WithBreaker(breaker))
	pub := New([]audit.Sink{kafka, store},
		WithAsyncBuffer(4),
		WithDeliveryTimeout(50*time.Millisecond),
	)

	orgID := id.NewOrganizationID()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Kind: audit.KindViolationDetected, Audience: audit.ToOrganization(orgID)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Kind: audit.KindViolationResolved, Audience: audit.ToOrganization(orgID)}))

	closed := make(chan struct{})
	go func() {
		_ = pub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("Close blocked on a stalled sink")
	}

	assert.True(t, breaker.IsOpen(), "timed-out deliveries should open the circuit")

	events, err := store.ListByAudience(context.Background(), audit.ToOrganization(orgID))
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestPublisher_RejectsIncompleteEvents(t *testing.T) {
	pub := New(nil)
	defer pub.Close()

	assert.Error(t, pub.Emit(context.Background(), audit.Event{Audience: audit.ToUser(id.NewUserID())}))
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Kind: audit.KindDataAccessed}))
}

func TestPublisher_SinkErrorsAreJoined(t *testing.T) {
	boom := errors.New("sink down")
	failing := audit.SinkFunc(func(context.Context, audit.Event) error { return boom })
	store := memory.NewInMemoryStore()
	pub := New([]audit.Sink{failing, store})
	defer pub.Close()

	userID := id.NewUserID()
	err := pub.Emit(context.Background(), audit.Event{Kind: audit.KindConsentRevoked, Audience: audit.ToUser(userID)})
	assert.ErrorIs(t, err, boom)

	events, _ := store.ListByAudience(context.Background(), audit.ToUser(userID))
	assert.Len(t, events, 1, "healthy sinks still receive the event")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := New(nil)
	require.NoError(t, pub.Close())
	err := pub.Emit(context.Background(), audit.Event{Kind: audit.KindDataAccessed, Audience: audit.ToUser(id.NewUserID())})
	assert.ErrorIs(t, err, ErrClosed)
}
