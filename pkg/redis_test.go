package pkg

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "PONG", client.Ping(t.Context()).Val())
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisURL: "not-a-url"})
	assert.Error(t, err)
}
