package waitlist

import (
	"context"
	"net"
	"os"
	"testing"

	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis test. Set REDIS_HOST to run it")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func redisTestKey(t *testing.T, client *redis.Client) string {
	key := "aimaker-waitlist-test:" + t.Name()
	require.NoError(t, client.Del(context.Background(), key).Err())
	t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })
	return key
}

func TestRedisRepository(t *testing.T) {
	client := newTestRedisClient(t)
	exerciseRepository(t, NewRedisRepository(client, redisTestKey(t, client)))
}

func TestRedisRepository_Concurrent(t *testing.T) {
	client := newTestRedisClient(t)
	exerciseConcurrentAppends(t, NewRedisRepository(client, redisTestKey(t, client)))
}

func TestRedisRepository_CorruptValue(t *testing.T) {
	client := newTestRedisClient(t)
	key := redisTestKey(t, client)
	require.NoError(t, client.Set(context.Background(), key, "{not json", 0).Err())

	_, err := NewRedisRepository(client, key).List(context.Background())
	assert.True(t, apperrors.IsStorageFailure(err))
}

func TestRedisRepository_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	err := NewRedisRepository(client, "").Ping(context.Background())

	assert.True(t, apperrors.IsStorageFailure(err))
	assert.Equal(t, MessageStorageUnavailable, apperrors.GetHumanReadableMessage(err))
}
