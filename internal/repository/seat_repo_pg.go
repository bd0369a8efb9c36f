package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSeatRepository is the Postgres inventory store. Bookings are conditional
// UPDATEs decided by RowsAffected, so row-level locking does the arbitration.
type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) *PGSeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) CreateSeats(ctx context.Context, seats []domain.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(seats))
	for _, s := range seats {
		status := s.Status
		if status == "" {
			status = domain.SeatAvailable
		}
		rows = append(rows, []any{s.ID, s.FlightID, s.SectionID, s.Row, s.Col, string(status)})
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"id", "flight_id", "section_id", "seat_row", "seat_col", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("create seats: %w", translate(err))
	}
	return tx.Commit(ctx)
}

func (r *PGSeatRepository) ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_id, section_id, seat_row, seat_col, status, COALESCE(holder, '')
		FROM seats WHERE flight_id=$1 ORDER BY section_id, seat_row, seat_col`, flightID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Seat, error) {
		var s domain.Seat
		err := row.Scan(&s.ID, &s.FlightID, &s.SectionID, &s.Row, &s.Col, &s.Status, &s.Holder)
		return s, err
	})
}

func (r *PGSeatRepository) StatusOf(ctx context.Context, seatID string) (domain.SeatStatus, error) {
	var status domain.SeatStatus
	if err := r.db.QueryRow(ctx, `SELECT status FROM seats WHERE id=$1`, seatID).Scan(&status); err != nil {
		return "", fmt.Errorf("seat %s: %w", seatID, translate(err))
	}
	return status, nil
}

func (r *PGSeatRepository) TryBook(ctx context.Context, seatID string, expected domain.SeatStatus, holder string) (bool, error) {
	if err := inventory.CheckTryBookArgs(expected, holder); err != nil {
		return false, err
	}
	res, err := r.db.Exec(ctx, `UPDATE seats SET status=$3, holder=$4, updated_at=now() WHERE id=$1 AND status=$2`,
		seatID, string(expected), string(domain.SeatBooked), holder)
	if err != nil {
		return false, fmt.Errorf("try book seat %s: %w", seatID, err)
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, seatID)
}

func (r *PGSeatRepository) Release(ctx context.Context, seatID, holder string) (bool, error) {
	if holder == "" {
		return false, nil
	}
	res, err := r.db.Exec(ctx, `UPDATE seats SET status=$2, holder=NULL, updated_at=now() WHERE id=$1 AND status=$3 AND holder=$4`,
		seatID, string(domain.SeatAvailable), string(domain.SeatBooked), holder)
	if err != nil {
		return false, fmt.Errorf("release seat %s: %w", seatID, err)
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, seatID)
}

func (r *PGSeatRepository) ensureExists(ctx context.Context, seatID string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seats WHERE id=$1)`, seatID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("seat %s: %w", seatID, domain.ErrNotFound)
	}
	return nil
}

var _ inventory.Store = (*PGSeatRepository)(nil)
