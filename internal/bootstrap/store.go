package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// NewSeatStore picks the inventory backend named by cfg.Inventory.Driver.
// pool and client may be nil when the driver does not need them.
func NewSeatStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, client *redis.Client) (inventory.Store, error) {
	switch cfg.Inventory.Driver {
	case config.DriverMemory:
		return inventory.NewMemoryStore(), nil
	case config.DriverPostgres:
		if pool == nil {
			return nil, fmt.Errorf("inventory driver %q needs a database pool", cfg.Inventory.Driver)
		}
		return repository.NewSeatRepository(pool), nil
	case config.DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("inventory driver %q needs a redis client", cfg.Inventory.Driver)
		}
		store := inventory.NewRedisStore(client)
		if err := store.PreloadScripts(ctx); err != nil {
			return nil, fmt.Errorf("preload redis scripts: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown inventory driver %q", cfg.Inventory.Driver)
	}
}
