package kafka_config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DisabledWithoutBrokers(t *testing.T) {
	cfg := Load(viper.New())

	assert.False(t, cfg.Enabled())
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
}

func TestLoad_ParsesValues(t *testing.T) {
	v := viper.New()
	v.Set(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	v.Set(EnvKafkaProducerBatchTimeout, "50ms")
	v.Set(EnvKafkaProducerRequireAcks, "1")
	v.Set(EnvKafkaProducerAsync, "true")
	v.Set(EnvKafkaProducerMaxAttempts, "not-a-number")

	cfg := Load(v)

	assert.True(t, cfg.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 50*time.Millisecond, cfg.ProducerBatchTimeout)
	assert.Equal(t, 1, cfg.ProducerRequireAcks)
	assert.True(t, cfg.ProducerAsync)
	assert.Equal(t, DefaultProducerMaxAttempts, cfg.ProducerMaxAttempts)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		v.Set(EnvKafkaBrokers, "localhost:9092")
		return Load(v)
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.ProducerCompression = "brotli"
	cfg.ProducerRequireAcks = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
	assert.Contains(t, err.Error(), "ProducerRequireAcks")

	cfg = valid()
	cfg.Brokers = nil
	assert.Error(t, cfg.Validate())
}
