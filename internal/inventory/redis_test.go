package inventory_test

import (
	"context"
	"os"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/inventory/inventorytest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// The Redis suite uses database 15 of TEST_REDIS_ADDR and flushes it first.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.FlushDB(ctx).Err())

	store := inventory.NewRedisStore(client)
	require.NoError(t, store.PreloadScripts(ctx))

	inventorytest.RunConformance(t, func(t *testing.T) inventory.Store {
		return store
	})
}
