package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	t.Run("binds environment variables", func(t *testing.T) {
		t.Setenv("APP_NAME", "vine-test")
		t.Setenv("PORT", "4242")
		t.Setenv("DB_NAME", "vine_test")
		t.Setenv("RATE_LIMIT_REQUESTS", "250")
		t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

		cfg, err := GetConfig()
		require.NoError(t, err)

		assert.Equal(t, "vine-test", cfg.AppName)
		assert.Equal(t, 4242, cfg.Port)
		assert.Equal(t, "vine_test", cfg.DatabaseName)
		assert.Equal(t, int64(250), cfg.RateLimitRequests)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	})

	t.Run("defaults apply when unset", func(t *testing.T) {
		cfg, err := GetConfig()
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.StartupMaxAttempts)
		assert.Equal(t, "db/pg", cfg.DatabaseMigrationFolderPath)
		assert.True(t, cfg.DatabaseMigrationAutoRollback)
		assert.Equal(t, "supply-chain-events", cfg.KafkaTopic)
		assert.Equal(t, "vine-graph-projector", cfg.KafkaConsumerGroup)
		assert.Equal(t, 10, cfg.ReadHeaderTimeoutSeconds)
	})
}
