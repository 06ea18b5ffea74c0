package client

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCacheIntegration exercises the view cache against a real Redis container.
func TestCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	cache := NewCache(client, time.Minute)

	// Everything misses on a cold cache.
	found, missing, err := cache.Get(ctx, []string{"/events/1", "/events/2"}, true)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.ElementsMatch(t, []string{"/events/1", "/events/2"}, missing)

	require.NoError(t, cache.Set(ctx, map[string]int64{"/events/1": 7}, true))

	found, missing, err = cache.Get(ctx, []string{"/events/1", "/events/2"}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), found["/events/1"])
	assert.Equal(t, []string{"/events/2"}, missing)

	// unique and non-unique counts live under separate keys.
	found, missing, err = cache.Get(ctx, []string{"/events/1"}, false)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []string{"/events/1"}, missing)
}
