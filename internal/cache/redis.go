package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// seatsVersionTTL outlives any seat list read in progress.
const seatsVersionTTL = 24 * time.Hour

// KEYS[1] seat list, KEYS[2] version; ARGV[1] expected version, ARGV[2]
// payload, ARGV[3] ttl in ms.
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisCache holds read-side copies (flight list, seat lists) and booking
// attempt records. Misses are reported as nil values with a nil error.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	seatsTTL   time.Duration
}

func NewRedisCache(client *redis.Client, flightsTTL, seatsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
		seatsTTL:   seatsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	if ok, err := c.getJSON(ctx, flightsKey(), &flights); err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.setJSON(ctx, flightsKey(), flights, c.flightsTTL)
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

func (c *RedisCache) GetSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	var seats []domain.Seat
	if ok, err := c.getJSON(ctx, seatsKey(flightID), &seats); err != nil || !ok {
		return nil, err
	}
	return seats, nil
}

// SeatsVersion is bumped by every InvalidateSeats. A reader takes it before
// listing seats and hands it to SetSeats.
func (c *RedisCache) SeatsVersion(ctx context.Context, flightID int64) (int64, error) {
	v, err := c.client.Get(ctx, seatsVersionKey(flightID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetSeats stores the list only if no invalidation happened since version was
// read. It reports whether the list was stored.
func (c *RedisCache) SetSeats(ctx context.Context, flightID int64, version int64, seats []domain.Seat) (bool, error) {
	payload, err := json.Marshal(seats)
	if err != nil {
		return false, err
	}
	keys := []string{seatsKey(flightID), seatsVersionKey(flightID)}
	stored, err := setIfVersionScript.Run(ctx, c.client, keys, version, payload, c.seatsTTL.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *RedisCache) InvalidateSeats(ctx context.Context, flightID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, seatsVersionKey(flightID))
		pipe.Expire(ctx, seatsVersionKey(flightID), seatsVersionTTL)
		pipe.Del(ctx, seatsKey(flightID))
		return nil
	})
	return err
}

func (c *RedisCache) GetAttempt(ctx context.Context, flightID int64, key string) (*domain.BookingAttempt, error) {
	var attempt domain.BookingAttempt
	if ok, err := c.getJSON(ctx, attemptKey(flightID, key), &attempt); err != nil || !ok {
		return nil, err
	}
	return &attempt, nil
}

func (c *RedisCache) SetAttempt(ctx context.Context, flightID int64, attempt domain.BookingAttempt, ttl time.Duration) error {
	return c.setJSON(ctx, attemptKey(flightID, attempt.Key), attempt, ttl)
}

// AcquireAttemptLock claims an idempotency key across instances while its
// commit runs.
func (c *RedisCache) AcquireAttemptLock(ctx context.Context, flightID int64, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, attemptLockKey(flightID, key), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseAttemptLock(ctx context.Context, flightID int64, key string) error {
	return c.client.Del(ctx, attemptLockKey(flightID, key)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatsKey(flightID int64) string {
	return fmt.Sprintf("cache:flight:%d:seats", flightID)
}

func seatsVersionKey(flightID int64) string {
	return fmt.Sprintf("cache:flight:%d:seats:version", flightID)
}

func attemptKey(flightID int64, key string) string {
	return fmt.Sprintf("booking:flight:%d:attempt:%s", flightID, key)
}

func attemptLockKey(flightID int64, key string) string {
	return fmt.Sprintf("lock:flight:%d:attempt:%s", flightID, key)
}
