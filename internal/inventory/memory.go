package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

// MemoryStore keeps the inventory in process memory behind one mutex.
type MemoryStore struct {
	mu       sync.Mutex
	seats    map[string]*domain.Seat
	byFlight map[int64][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seats:    make(map[string]*domain.Seat),
		byFlight: make(map[int64][]string),
	}
}

func (s *MemoryStore) CreateSeats(ctx context.Context, seats []domain.Seat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if seat.ID == "" {
			return fmt.Errorf("%w: seat id is required", domain.ErrInvalidInput)
		}
		if _, ok := s.seats[seat.ID]; ok {
			return fmt.Errorf("seat %s: %w", seat.ID, domain.ErrDuplicate)
		}
		if _, ok := batch[seat.ID]; ok {
			return fmt.Errorf("seat %s: %w", seat.ID, domain.ErrDuplicate)
		}
		batch[seat.ID] = struct{}{}
	}

	for _, seat := range seats {
		stored := seat
		if stored.Status == "" {
			stored.Status = domain.SeatAvailable
		}
		s.seats[seat.ID] = &stored
		s.byFlight[seat.FlightID] = append(s.byFlight[seat.FlightID], seat.ID)
	}
	return nil
}

func (s *MemoryStore) ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byFlight[flightID]
	seats := make([]domain.Seat, 0, len(ids))
	for _, id := range ids {
		seats = append(seats, *s.seats[id])
	}
	return seats, nil
}

func (s *MemoryStore) StatusOf(ctx context.Context, seatID string) (domain.SeatStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[seatID]
	if !ok {
		return "", fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
	}
	return seat.Status, nil
}

func (s *MemoryStore) TryBook(ctx context.Context, seatID string, expected domain.SeatStatus, holder string) (bool, error) {
	if err := CheckTryBookArgs(expected, holder); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[seatID]
	if !ok {
		return false, fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
	}
	if seat.Status != expected {
		return false, nil
	}
	seat.Status = domain.SeatBooked
	seat.Holder = holder
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, seatID, holder string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[seatID]
	if !ok {
		return false, fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
	}
	if seat.Status != domain.SeatBooked || holder == "" || seat.Holder != holder {
		return false, nil
	}
	seat.Status = domain.SeatAvailable
	seat.Holder = ""
	return true, nil
}

var _ Store = (*MemoryStore)(nil)
