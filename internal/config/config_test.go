package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, "emporium", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, "orders", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MONGO_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_LOGIN_RATE_LIMIT", "3")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 2*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 3, cfg.Auth.LoginRateLimit)
}

func TestFromViper_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := FromViper(viper.New())
	assert.Error(t, err)
}
