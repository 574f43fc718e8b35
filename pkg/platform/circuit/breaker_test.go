package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokerClock is a hand-driven clock for replaying a broker outage.
type brokerClock struct {
	now time.Time
}

func (c *brokerClock) Now() time.Time { return c.now }

func (c *brokerClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newProducerBreaker(t *testing.T, opts ...Option) (*Breaker, *brokerClock) {
	t.Helper()
	clock := &brokerClock{now: time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New("kafka-audit", opts...), clock
}

func TestBreaker_StartsClosedForProducer(t *testing.T) {
	b, _ := newProducerBreaker(t)
	assert.Equal(t, "kafka-audit", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

func TestBreaker_BrokerOutage(t *testing.T) {
	b, clock := newProducerBreaker(t,
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithCooldown(30*time.Second),
	)

	t.Run("transient produce errors keep publishing", func(t *testing.T) {
		for range 2 {
			shed, change := b.RecordFailure()
			assert.False(t, shed)
			assert.False(t, change.Opened)
		}
		assert.True(t, b.Allow())
	})

	t.Run("third consecutive failure sheds deliveries", func(t *testing.T) {
		shed, change := b.RecordFailure()
		assert.True(t, shed)
		assert.True(t, change.Opened)
		assert.Equal(t, "open", b.State().String())
		assert.False(t, b.Allow())
	})

	t.Run("failures while open report no new transition", func(t *testing.T) {
		clock.advance(30 * time.Second)
		require.True(t, b.Allow())
		shed, change := b.RecordFailure()
		assert.True(t, shed)
		assert.False(t, change.Opened)
		assert.False(t, b.Allow(), "a failed trial restarts the cooldown")
	})

	t.Run("brokers recover after cooldown", func(t *testing.T) {
		clock.advance(29 * time.Second)
		assert.False(t, b.Allow())
		clock.advance(time.Second)
		require.True(t, b.Allow())

		ok, change := b.RecordSuccess()
		assert.False(t, ok)
		assert.False(t, change.Closed)
		assert.True(t, b.IsOpen(), "one acknowledged record is not enough")

		ok, change = b.RecordSuccess()
		assert.True(t, ok)
		assert.True(t, change.Closed)
		assert.False(t, b.IsOpen())
		assert.True(t, b.Allow())
	})
}

func TestBreaker_FlappingBrokerNeedsFreshSuccessStreak(t *testing.T) {
	b, clock := newProducerBreaker(t,
		WithFailureThreshold(1),
		WithSuccessThreshold(3),
		WithCooldown(time.Second),
	)
	b.RecordFailure()
	clock.advance(time.Second)

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure()
	assert.True(t, b.IsOpen(), "a failure mid-recovery resets the success streak")

	b.RecordSuccess()
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreaker_AcknowledgedRecordClearsFailureStreak(t *testing.T) {
	b, _ := newProducerBreaker(t, WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen(), "failures are counted consecutively")

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_ResetAfterOperatorIntervention(t *testing.T) {
	b, _ := newProducerBreaker(t, WithFailureThreshold(1), WithCooldown(time.Hour))
	b.RecordFailure()
	require.False(t, b.Allow())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())

	shed, change := b.RecordFailure()
	assert.True(t, shed)
	assert.True(t, change.Opened, "counters start over after reset")
}
