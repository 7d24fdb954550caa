//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/kicon/kiconapi/internal/redisclient"
)

// NewRedis starts a throwaway redis and returns a connected client.
func NewRedis(t *testing.T) *redisclient.Client {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	// connection string is redis://host:port
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis URL: %v", err)
	}

	client := redisclient.New(redisclient.Config{Addr: opts.Addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	return client
}
