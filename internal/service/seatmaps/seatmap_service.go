// Package seatmaps serves projected seat maps of flights.
package seatmaps

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"golang.org/x/sync/singleflight"
)

type SeatMapUseCase interface {
	ProjectSeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error)
	ProjectSeatMapByNumber(ctx context.Context, number string) (*seatmap.Grid, error)
}

type FlightReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
}

type SectionReader interface {
	GetSections(ctx context.Context, ids []string) ([]domain.FlightSection, error)
}

// SeatCache is a short-lived copy of a flight's seat list. It may lag the
// store; bookings are always decided by the store. SetSeats must refuse a
// list whose version was bumped by an invalidation while it was read.
type SeatCache interface {
	GetSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
	SeatsVersion(ctx context.Context, flightID int64) (int64, error)
	SetSeats(ctx context.Context, flightID int64, version int64, seats []domain.Seat) (bool, error)
}

type SeatMapService struct {
	flights  FlightReader
	sections SectionReader
	store    inventory.Store
	cache    SeatCache
	log      *slog.Logger
	group    singleflight.Group
}

// NewSeatMapService builds the service. cache may be nil.
func NewSeatMapService(flights FlightReader, sections SectionReader, store inventory.Store, cache SeatCache, log *slog.Logger) *SeatMapService {
	return &SeatMapService{flights: flights, sections: sections, store: store, cache: cache, log: log}
}

func (s *SeatMapService) ProjectSeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, flight)
}

func (s *SeatMapService) ProjectSeatMapByNumber(ctx context.Context, number string) (*seatmap.Grid, error) {
	flight, err := s.flights.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, flight)
}

func (s *SeatMapService) project(ctx context.Context, flight *domain.Flight) (*seatmap.Grid, error) {
	sections, err := s.sections.GetSections(ctx, flight.SectionIDs)
	if err != nil {
		return nil, fmt.Errorf("sections of flight %d: %w", flight.ID, err)
	}
	seats, err := s.loadSeats(ctx, flight.ID)
	if err != nil {
		return nil, err
	}
	return seatmap.Project(*flight, sections, seats)
}

// loadSeats reads through the cache. Concurrent misses for one flight share
// a single store read.
func (s *SeatMapService) loadSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSeats(ctx, flightID)
		if err != nil {
			s.log.WarnContext(ctx, "seat cache read failed", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(strconv.FormatInt(flightID, 10), func() (any, error) {
		version, cacheable := int64(0), s.cache != nil
		if cacheable {
			var err error
			if version, err = s.cache.SeatsVersion(ctx, flightID); err != nil {
				cacheable = false
				s.log.WarnContext(ctx, "seat cache version read failed", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
			}
		}

		seats, err := s.store.ListSeats(ctx, flightID)
		if err != nil {
			return nil, fmt.Errorf("%w: list seats of flight %d: %w", domain.ErrStoreUnavailable, flightID, err)
		}
		if cacheable {
			stored, err := s.cache.SetSeats(ctx, flightID, version, seats)
			switch {
			case err != nil:
				s.log.WarnContext(ctx, "seat cache write failed", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
			case !stored:
				s.log.DebugContext(ctx, "seat list changed while read, not cached", slog.Int64("flight_id", flightID))
			}
		}
		return seats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Seat), nil
}

var _ SeatMapUseCase = (*SeatMapService)(nil)
