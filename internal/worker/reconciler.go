// Package worker consumes booking events: it drops stale seat list caches and
// releases seats a failed commit could not compensate.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/kafka"
)

type SeatReleaser interface {
	Release(ctx context.Context, seatID, holder string) (bool, error)
}

type SeatCache interface {
	InvalidateSeats(ctx context.Context, flightID int64) error
}

type leak struct {
	flightID int64
	seatID   string
	holder   string
}

// Reconciler keeps leaked seats it failed to release and retries them on
// every Sweep. Pending leaks live in memory only; the event log is the
// durable record.
type Reconciler struct {
	store SeatReleaser
	cache SeatCache
	log   *slog.Logger

	mu      sync.Mutex
	pending map[leak]struct{}
}

// NewReconciler builds a Reconciler. cache may be nil.
func NewReconciler(store SeatReleaser, cache SeatCache, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store:   store,
		cache:   cache,
		log:     log,
		pending: make(map[leak]struct{}),
	}
}

// HandleEvent never fails on store or cache errors so one bad seat does not
// stall the partition.
func (r *Reconciler) HandleEvent(ctx context.Context, event kafka.BookingEvent) error {
	switch event.Type {
	case kafka.EventBookingCommitted, kafka.EventBookingConflicted:
		r.invalidate(ctx, event.FlightID)
	case kafka.EventCompensationFailed:
		released := 0
		for _, seatID := range event.LeakedSeats {
			l := leak{flightID: event.FlightID, seatID: seatID, holder: event.Holder}
			if r.release(ctx, l) {
				released++
				continue
			}
			r.mu.Lock()
			r.pending[l] = struct{}{}
			r.mu.Unlock()
		}
		r.log.Info("compensation event handled",
			slog.Int64("flight_id", event.FlightID),
			slog.String("attempt_id", event.AttemptID),
			slog.Int("leaked", len(event.LeakedSeats)),
			slog.Int("released", released),
		)
		r.invalidate(ctx, event.FlightID)
	}
	return nil
}

// Sweep retries every pending leak once and returns how many remain.
func (r *Reconciler) Sweep(ctx context.Context) int {
	r.mu.Lock()
	leaks := make([]leak, 0, len(r.pending))
	for l := range r.pending {
		leaks = append(leaks, l)
	}
	r.mu.Unlock()

	flights := make(map[int64]struct{})
	for _, l := range leaks {
		if ctx.Err() != nil {
			break
		}
		if r.release(ctx, l) {
			r.mu.Lock()
			delete(r.pending, l)
			r.mu.Unlock()
			flights[l.flightID] = struct{}{}
		}
	}
	for flightID := range flights {
		r.invalidate(ctx, flightID)
	}
	return r.Pending()
}

func (r *Reconciler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Run sweeps every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if left := r.Sweep(ctx); left > 0 {
				r.log.Warn("leaked seats still pending", slog.Int("pending", left))
			}
		}
	}
}

// release reports whether the leak is settled. A seat that is already free,
// held by someone else or gone counts as settled.
func (r *Reconciler) release(ctx context.Context, l leak) bool {
	ok, err := r.store.Release(ctx, l.seatID, l.holder)
	switch {
	case err == nil:
		if !ok {
			r.log.Debug("leaked seat already settled", slog.String("seat_id", l.seatID))
		}
		return true
	case errors.Is(err, domain.ErrNotFound):
		r.log.Warn("leaked seat not found", slog.String("seat_id", l.seatID))
		return true
	default:
		r.log.Error("release leaked seat", slog.String("seat_id", l.seatID), slog.String("error", err.Error()))
		return false
	}
}

func (r *Reconciler) invalidate(ctx context.Context, flightID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateSeats(ctx, flightID); err != nil {
		r.log.Warn("invalidate seat cache", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
	}
}
