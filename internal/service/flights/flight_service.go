package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	ListSections(ctx context.Context) ([]domain.FlightSection, error)
	GetSection(ctx context.Context, id string) (*domain.FlightSection, error)
	CreateSection(ctx context.Context, input CreateSectionInput) (*domain.FlightSection, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber  string        `json:"flight_number" validate:"required,max=16"`
	FromAirport   string        `json:"from_airport" validate:"len=3,alpha"`
	ToAirport     string        `json:"to_airport" validate:"len=3,alpha,nefield=FromAirport"`
	DepartureTime time.Time     `json:"departure_time" validate:"required"`
	Duration      time.Duration `json:"duration" validate:"gt=0"`
	SectionIDs    []string      `json:"section_ids" validate:"min=1,unique,dive,required"`
}

type CreateSectionInput struct {
	SeatClass string `json:"seat_class" validate:"required"`
	Rows      int    `json:"rows" validate:"gt=0"`
	Cols      int    `json:"cols" validate:"gt=0"`
}

var validate = validator.New()

type FlightService struct {
	repo     repository.FlightRepository
	sections repository.SectionRepository
	seats    inventory.Store
	cache    FlightCache
	log      *slog.Logger
	newID    func() string
}

func NewFlightService(repo repository.FlightRepository, sections repository.SectionRepository, seats inventory.Store, cache FlightCache, log *slog.Logger) *FlightService {
	return &FlightService{repo: repo, sections: sections, seats: seats, cache: cache, log: log, newID: uuid.NewString}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	return s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

// Create stores the flight and provisions one AVAILABLE seat per position of
// every section. A flight whose seats could not be created is removed again.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	input.FlightNumber = strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	input.FromAirport = strings.ToUpper(strings.TrimSpace(input.FromAirport))
	input.ToAirport = strings.ToUpper(strings.TrimSpace(input.ToAirport))
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	sections, err := s.sections.GetSections(ctx, input.SectionIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return nil, err
	}
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			return nil, fmt.Errorf("%w: section %s: %v", domain.ErrInvalidLayout, section.ID, err)
		}
	}

	flight := &domain.Flight{
		FlightNumber:  input.FlightNumber,
		SectionIDs:    input.SectionIDs,
		FromAirport:   input.FromAirport,
		ToAirport:     input.ToAirport,
		DepartureTime: input.DepartureTime.UTC(),
		Duration:      input.Duration,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	seats, err := s.generateSeats(flight.ID, sections)
	if err == nil {
		err = s.seats.CreateSeats(ctx, seats)
	}
	if err != nil {
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), flight.ID); delErr != nil {
			s.log.ErrorContext(ctx, "remove flight without seats",
				slog.Int64("flight_id", flight.ID), slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("provision seats of flight %s: %w", flight.FlightNumber, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	s.log.InfoContext(ctx, "flight created",
		slog.Int64("flight_id", flight.ID),
		slog.String("flight_number", flight.FlightNumber),
		slog.Int("seats", len(seats)))
	return flight, nil
}

// generateSeats lays out every section and checks that each one is covered
// exactly once before anything is written.
func (s *FlightService) generateSeats(flightID int64, sections []domain.FlightSection) ([]domain.Seat, error) {
	var seats []domain.Seat
	for _, section := range sections {
		generated := seatmap.GenerateSeats(flightID, section, s.newID)
		if err := seatmap.CheckCoverage(flightID, section, generated); err != nil {
			return nil, err
		}
		seats = append(seats, generated...)
	}
	return seats, nil
}

func (s *FlightService) ListSections(ctx context.Context) ([]domain.FlightSection, error) {
	return s.sections.List(ctx)
}

func (s *FlightService) GetSection(ctx context.Context, id string) (*domain.FlightSection, error) {
	return s.sections.GetByID(ctx, id)
}

func (s *FlightService) CreateSection(ctx context.Context, input CreateSectionInput) (*domain.FlightSection, error) {
	input.SeatClass = strings.TrimSpace(input.SeatClass)
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	section := &domain.FlightSection{
		ID:        s.newID(),
		SeatClass: input.SeatClass,
		Rows:      input.Rows,
		Cols:      input.Cols,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

var _ FlightUseCase = (*FlightService)(nil)
