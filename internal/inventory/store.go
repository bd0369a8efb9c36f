// Package inventory owns the booking status of every seat. Store
// implementations are the only writers of that status; everything else reads
// projections of it.
package inventory

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

// Store is the authoritative seat inventory.
//
// TryBook is a compare-and-set: it moves a seat to BOOKED, recording holder,
// only if the seat's current status equals expected, and reports whether it
// did. It must be atomic against every other caller, so that of any number of
// concurrent TryBook calls on one seat at most one returns true. Only
// AVAILABLE is accepted as expected.
//
// Release is the reverse compare-and-set, used only to compensate a failed
// multi-seat commit: it moves a BOOKED seat back to AVAILABLE if and only if
// it is still held by holder.
//
// StatusOf may be served from a cache and must not be used to decide a
// booking.
type Store interface {
	CreateSeats(ctx context.Context, seats []domain.Seat) error
	ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
	StatusOf(ctx context.Context, seatID string) (domain.SeatStatus, error)
	TryBook(ctx context.Context, seatID string, expected domain.SeatStatus, holder string) (bool, error)
	Release(ctx context.Context, seatID, holder string) (bool, error)
}

// CheckTryBookArgs validates the arguments every Store implementation
// receives in TryBook.
func CheckTryBookArgs(expected domain.SeatStatus, holder string) error {
	if expected != domain.SeatAvailable {
		return fmt.Errorf("%w: only %s seats can be booked, got expected status %q", domain.ErrInvalidInput, domain.SeatAvailable, expected)
	}
	if holder == "" {
		return fmt.Errorf("%w: holder is required", domain.ErrInvalidInput)
	}
	return nil
}
