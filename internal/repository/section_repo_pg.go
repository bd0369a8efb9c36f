package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SectionRepository interface {
	Create(ctx context.Context, section *domain.FlightSection) error
	GetByID(ctx context.Context, id string) (*domain.FlightSection, error)
	List(ctx context.Context) ([]domain.FlightSection, error)
	// GetSections returns the sections in the order of ids.
	GetSections(ctx context.Context, ids []string) ([]domain.FlightSection, error)
}

type PGSectionRepository struct {
	db *pgxpool.Pool
}

func NewSectionRepository(db *pgxpool.Pool) SectionRepository {
	return &PGSectionRepository{db: db}
}

func (r *PGSectionRepository) Create(ctx context.Context, section *domain.FlightSection) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flight_sections (id, seat_class, rows, cols) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		section.ID, section.SeatClass, section.Rows, section.Cols).Scan(&section.CreatedAt)
	if err != nil {
		return fmt.Errorf("section %s: %w", section.ID, translate(err))
	}
	return nil
}

func (r *PGSectionRepository) GetByID(ctx context.Context, id string) (*domain.FlightSection, error) {
	var s domain.FlightSection
	err := r.db.QueryRow(ctx, `SELECT id, seat_class, rows, cols, created_at FROM flight_sections WHERE id=$1`, id).
		Scan(&s.ID, &s.SeatClass, &s.Rows, &s.Cols, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", id, translate(err))
	}
	return &s, nil
}

func (r *PGSectionRepository) List(ctx context.Context) ([]domain.FlightSection, error) {
	rows, err := r.db.Query(ctx, `SELECT id, seat_class, rows, cols, created_at FROM flight_sections ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

func (r *PGSectionRepository) GetSections(ctx context.Context, ids []string) ([]domain.FlightSection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, seat_class, rows, cols, created_at FROM flight_sections WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	found, err := collectSections(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.FlightSection, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	sections := make([]domain.FlightSection, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
		}
		sections = append(sections, s)
	}
	return sections, nil
}

func collectSections(rows pgx.Rows) ([]domain.FlightSection, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FlightSection, error) {
		var s domain.FlightSection
		err := row.Scan(&s.ID, &s.SeatClass, &s.Rows, &s.Cols, &s.CreatedAt)
		return s, err
	})
}

var _ SectionRepository = (*PGSectionRepository)(nil)
