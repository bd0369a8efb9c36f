package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Each seat is a hash at seat:{id}; flight:{id}:seats indexes a flight's
// seats. Both compare-and-set operations run as Lua scripts so the read and
// the write happen in one step on the server.

// KEYS[1] = seat key
// ARGV[1] = expected status, ARGV[2] = booked status, ARGV[3] = holder
var tryBookScript = redis.NewScript(`
local status = redis.call("HGET", KEYS[1], "status")
if not status then
    return -1
end
if status ~= ARGV[1] then
    return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[2], "holder", ARGV[3])
return 1
`)

// KEYS[1] = seat key
// ARGV[1] = booked status, ARGV[2] = holder, ARGV[3] = available status
var releaseScript = redis.NewScript(`
local seat = redis.call("HMGET", KEYS[1], "status", "holder")
if not seat[1] then
    return -1
end
if seat[1] ~= ARGV[1] or seat[2] ~= ARGV[2] then
    return 0
end
redis.call("HSET", KEYS[1], "status", ARGV[3])
redis.call("HDEL", KEYS[1], "holder")
return 1
`)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PreloadScripts loads the Lua scripts so the first booking does not pay for
// an EVALSHA miss.
func (s *RedisStore) PreloadScripts(ctx context.Context) error {
	if err := tryBookScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("load try-book script: %w", err)
	}
	if err := releaseScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("load release script: %w", err)
	}
	return nil
}

func (s *RedisStore) CreateSeats(ctx context.Context, seats []domain.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	exists := make([]*redis.IntCmd, len(seats))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, seat := range seats {
			exists[i] = pipe.Exists(ctx, seatKey(seat.ID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("check seats: %w", err)
	}
	for i, cmd := range exists {
		if cmd.Val() > 0 {
			return fmt.Errorf("seat %s: %w", seats[i].ID, domain.ErrDuplicate)
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, seat := range seats {
			status := seat.Status
			if status == "" {
				status = domain.SeatAvailable
			}
			pipe.HSet(ctx, seatKey(seat.ID),
				"flight_id", seat.FlightID,
				"section_id", seat.SectionID,
				"row", seat.Row,
				"col", seat.Col,
				"status", string(status),
			)
			pipe.SAdd(ctx, flightSeatsKey(seat.FlightID), seat.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create seats: %w", err)
	}
	return nil
}

func (s *RedisStore) ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	ids, err := s.client.SMembers(ctx, flightSeatsKey(flightID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list seat ids: %w", err)
	}
	sort.Strings(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, seatKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}

	seats := make([]domain.Seat, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		seat, err := seatFromHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

func (s *RedisStore) StatusOf(ctx context.Context, seatID string) (domain.SeatStatus, error) {
	status, err := s.client.HGet(ctx, seatKey(seatID), "status").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
		}
		return "", err
	}
	return domain.SeatStatus(status), nil
}

func (s *RedisStore) TryBook(ctx context.Context, seatID string, expected domain.SeatStatus, holder string) (bool, error) {
	if err := CheckTryBookArgs(expected, holder); err != nil {
		return false, err
	}
	n, err := tryBookScript.Run(ctx, s.client, []string{seatKey(seatID)},
		string(expected), string(domain.SeatBooked), holder).Int()
	if err != nil {
		return false, fmt.Errorf("try book seat %s: %w", seatID, err)
	}
	return scriptOutcome(seatID, n)
}

func (s *RedisStore) Release(ctx context.Context, seatID, holder string) (bool, error) {
	if holder == "" {
		return false, nil
	}
	n, err := releaseScript.Run(ctx, s.client, []string{seatKey(seatID)},
		string(domain.SeatBooked), holder, string(domain.SeatAvailable)).Int()
	if err != nil {
		return false, fmt.Errorf("release seat %s: %w", seatID, err)
	}
	return scriptOutcome(seatID, n)
}

func scriptOutcome(seatID string, n int) (bool, error) {
	switch n {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
	}
}

func seatFromHash(id string, fields map[string]string) (domain.Seat, error) {
	flightID, err := strconv.ParseInt(fields["flight_id"], 10, 64)
	if err != nil {
		return domain.Seat{}, fmt.Errorf("seat %s: bad flight_id: %w", id, err)
	}
	row, err := strconv.Atoi(fields["row"])
	if err != nil {
		return domain.Seat{}, fmt.Errorf("seat %s: bad row: %w", id, err)
	}
	col, err := strconv.Atoi(fields["col"])
	if err != nil {
		return domain.Seat{}, fmt.Errorf("seat %s: bad col: %w", id, err)
	}
	return domain.Seat{
		ID:        id,
		FlightID:  flightID,
		SectionID: fields["section_id"],
		Row:       row,
		Col:       col,
		Status:    domain.SeatStatus(fields["status"]),
		Holder:    fields["holder"],
	}, nil
}

func seatKey(id string) string {
	return "seat:" + id
}

func flightSeatsKey(flightID int64) string {
	return fmt.Sprintf("flight:%d:seats", flightID)
}

var _ Store = (*RedisStore)(nil)
