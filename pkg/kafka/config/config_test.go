package kafka_config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultKafkaBrokers}, cfg.Brokers)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
	assert.Equal(t, DefaultProducerBatchTimeout, cfg.ProducerBatchTimeout)
	assert.Equal(t, DefaultProducerRequireAcks, cfg.ProducerRequireAcks)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
}

func TestLoad_BrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.ProducerCompression = "brotli"
	cfg.ProducerRequireAcks = 2
	cfg.Brokers = []string{""}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
	assert.Contains(t, err.Error(), "ProducerRequireAcks")
	assert.Contains(t, err.Error(), "Broker 0 cannot be empty")
}
