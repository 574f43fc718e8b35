package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 30*24*time.Hour, cfg.Compliance.ScanWindow)
		assert.Equal(t, time.Minute, cfg.Compliance.SweepInterval)
		assert.Empty(t, cfg.Postgres.DSN)
		assert.Nil(t, cfg.Kafka.Brokers)
		assert.Equal(t, 10*time.Second, cfg.Kafka.DeliveryTimeout)
		assert.Equal(t, 15*time.Second, cfg.Audit.DeliveryTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("LEDGER_ADDR", ":9090")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("COMPLIANCE_SCAN_INTERVAL", "15m")
		t.Setenv("COMPLIANCE_SCAN_PARALLELISM", "8")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 15*time.Minute, cfg.Compliance.ScanInterval)
		assert.Equal(t, 8, cfg.Compliance.ScanParallel)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("CONSENT_SWEEP_INTERVAL", "soon")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CONSENT_SWEEP_INTERVAL")
	})
}
