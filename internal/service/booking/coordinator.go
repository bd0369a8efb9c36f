// Package booking commits multi-seat bookings all-or-nothing on top of the
// per-seat compare-and-set of the inventory store.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type BookingUseCase interface {
	CommitBooking(ctx context.Context, input CommitInput) (*domain.BookingResult, error)
}

type FlightReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type Cache interface {
	GetAttempt(ctx context.Context, flightID int64, key string) (*domain.BookingAttempt, error)
	SetAttempt(ctx context.Context, flightID int64, attempt domain.BookingAttempt, ttl time.Duration) error
	AcquireAttemptLock(ctx context.Context, flightID int64, key string, ttl time.Duration) (bool, error)
	ReleaseAttemptLock(ctx context.Context, flightID int64, key string) error
	InvalidateSeats(ctx context.Context, flightID int64) error
}

type Producer interface {
	PublishBookingEvent(ctx context.Context, event kafka.BookingEvent) error
}

type CommitInput struct {
	FlightID int64
	SeatIDs  []string
	// IdempotencyKey makes retries of one logical commit return the first
	// recorded result. Optional.
	IdempotencyKey string
}

const (
	defaultSeatTimeout     = 2 * time.Second
	defaultReleaseAttempts = 3
	defaultReleaseBackoff  = 100 * time.Millisecond
	defaultIdempotencyTTL  = 10 * time.Minute
	defaultPublishTimeout  = time.Second
	minAttemptLockTTL      = 30 * time.Second
)

type BookingCoordinator struct {
	flights         FlightReader
	store           inventory.Store
	cache           Cache
	producer        Producer
	log             *slog.Logger
	seatTimeout     time.Duration
	releaseAttempts int
	releaseBackoff  time.Duration
	idempotencyTTL  time.Duration
	publishTimeout  time.Duration
	newAttemptID    func() string
	now             func() time.Time
	group           singleflight.Group
}

type Option func(*BookingCoordinator)

// WithCache enables idempotency records and seat list invalidation.
func WithCache(cache Cache) Option {
	return func(c *BookingCoordinator) {
		c.cache = cache
	}
}

func WithProducer(producer Producer) Option {
	return func(c *BookingCoordinator) {
		c.producer = producer
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *BookingCoordinator) {
		c.log = log
	}
}

// WithSeatTimeout bounds every single TryBook and Release call.
func WithSeatTimeout(d time.Duration) Option {
	return func(c *BookingCoordinator) {
		if d > 0 {
			c.seatTimeout = d
		}
	}
}

func WithReleasePolicy(attempts int, backoff time.Duration) Option {
	return func(c *BookingCoordinator) {
		if attempts > 0 {
			c.releaseAttempts = attempts
		}
		if backoff >= 0 {
			c.releaseBackoff = backoff
		}
	}
}

func WithIdempotencyTTL(d time.Duration) Option {
	return func(c *BookingCoordinator) {
		if d > 0 {
			c.idempotencyTTL = d
		}
	}
}

// WithPublishTimeout bounds the cache invalidation and event publish that
// follow every attempt.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *BookingCoordinator) {
		if d > 0 {
			c.publishTimeout = d
		}
	}
}

func withAttemptIDs(next func() string) Option {
	return func(c *BookingCoordinator) {
		c.newAttemptID = next
	}
}

func NewBookingCoordinator(flights FlightReader, store inventory.Store, opts ...Option) *BookingCoordinator {
	c := &BookingCoordinator{
		flights:         flights,
		store:           store,
		log:             slog.Default(),
		seatTimeout:     defaultSeatTimeout,
		releaseAttempts: defaultReleaseAttempts,
		releaseBackoff:  defaultReleaseBackoff,
		idempotencyTTL:  defaultIdempotencyTTL,
		publishTimeout:  defaultPublishTimeout,
		newAttemptID:    uuid.NewString,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CommitBooking books every requested seat or none of them. A CONFLICT is a
// result, not an error: errors are reserved for bad input, unknown flights,
// an unreachable store before any seat was touched, and caller cancellation.
func (c *BookingCoordinator) CommitBooking(ctx context.Context, input CommitInput) (*domain.BookingResult, error) {
	seatIDs, err := normalizeSeatIDs(input.SeatIDs)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return c.commit(ctx, input.FlightID, seatIDs)
	}

	// A keyed commit is shared by every caller retrying under the key, so it
	// runs detached from any one of them and is bounded by the attempt budget.
	// Each caller stops waiting when its own ctx ends.
	fp := fingerprint(seatIDs)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%d/%s", input.FlightID, key), func() (any, error) {
		actx, cancel := context.WithTimeout(detached, c.attemptBudget(len(seatIDs)))
		defer cancel()
		result, err := c.commitOnce(actx, input.FlightID, key, seatIDs, fp)
		if err != nil {
			return nil, err
		}
		return domain.BookingAttempt{Key: key, Fingerprint: fp, Result: *result}, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("booking on flight %d key %s: %w", input.FlightID, key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return replay(res.Val.(domain.BookingAttempt), fp)
	}
}

// attemptBudget covers a TryBook and a Release per seat plus the lookups
// before them.
func (c *BookingCoordinator) attemptBudget(seats int) time.Duration {
	return max(minAttemptLockTTL, 2*c.seatTimeout*time.Duration(seats+1))
}

// commitOnce runs one keyed commit, serialised across instances by the
// attempt lock when a cache is configured.
func (c *BookingCoordinator) commitOnce(ctx context.Context, flightID int64, key string, seatIDs []string, fp string) (*domain.BookingResult, error) {
	if c.cache == nil {
		return c.commit(ctx, flightID, seatIDs)
	}

	locked, lockErr := c.cache.AcquireAttemptLock(ctx, flightID, key, c.attemptBudget(len(seatIDs)))
	switch {
	case lockErr != nil:
		c.log.WarnContext(ctx, "attempt lock unavailable, committing without it",
			slog.Int64("flight_id", flightID), slog.String("error", lockErr.Error()))
	case locked:
		defer func() {
			if err := c.cache.ReleaseAttemptLock(context.WithoutCancel(ctx), flightID, key); err != nil {
				c.log.WarnContext(ctx, "release attempt lock", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
			}
		}()
	}

	recorded, err := c.cache.GetAttempt(ctx, flightID, key)
	if err != nil {
		c.log.WarnContext(ctx, "read booking attempt", slog.Int64("flight_id", flightID), slog.String("error", err.Error()))
	}
	if recorded != nil {
		return replay(*recorded, fp)
	}
	if lockErr == nil && !locked {
		return nil, fmt.Errorf("flight %d key %s: %w", flightID, key, domain.ErrAttemptInProgress)
	}

	result, err := c.commit(ctx, flightID, seatIDs)
	if err != nil {
		return nil, err
	}
	if !result.Retryable {
		attempt := domain.BookingAttempt{Key: key, Fingerprint: fp, Result: *result, CompletedAt: c.now()}
		if err := c.cache.SetAttempt(context.WithoutCancel(ctx), flightID, attempt, c.idempotencyTTL); err != nil {
			c.log.WarnContext(ctx, "record booking attempt",
				slog.Int64("flight_id", flightID), slog.String("attempt_id", result.AttemptID), slog.String("error", err.Error()))
		}
	}
	return result, nil
}

func (c *BookingCoordinator) commit(ctx context.Context, flightID int64, seatIDs []string) (*domain.BookingResult, error) {
	if _, err := c.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	if len(seatIDs) == 0 {
		return &domain.BookingResult{Status: domain.BookingSuccess, FlightID: flightID, BookedSeats: []string{}}, nil
	}

	known, err := c.store.ListSeats(ctx, flightID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: list seats of flight %d: %w", domain.ErrStoreUnavailable, flightID, err)
	}
	if unknown := missingSeats(seatIDs, known); len(unknown) > 0 {
		result := &domain.BookingResult{Status: domain.BookingConflict, FlightID: flightID, ConflictingSeats: unknown}
		c.log.InfoContext(ctx, "booking rejected, seats not on flight",
			slog.Int64("flight_id", flightID), slog.Any("seat_ids", unknown))
		return result, nil
	}

	attemptID := c.newAttemptID()
	log := c.log.With(slog.Int64("flight_id", flightID), slog.String("attempt_id", attemptID))

	// held lists every seat this attempt may have booked, including seats
	// whose TryBook outcome is unknown.
	held := make([]string, 0, len(seatIDs))
	for i, seatID := range seatIDs {
		if err := ctx.Err(); err != nil {
			c.compensate(ctx, log, flightID, attemptID, held)
			return nil, fmt.Errorf("booking on flight %d interrupted: %w", flightID, err)
		}

		ok, err := c.tryBook(ctx, seatID, attemptID)
		if err == nil && ok {
			held = append(held, seatID)
			continue
		}

		retryable := false
		switch {
		case err == nil:
			log.InfoContext(ctx, "seat already booked", slog.String("seat_id", seatID))
		case errors.Is(err, domain.ErrNotFound):
			log.InfoContext(ctx, "seat disappeared", slog.String("seat_id", seatID))
		default:
			held = append(held, seatID)
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.compensate(ctx, log, flightID, attemptID, held)
				return nil, fmt.Errorf("booking on flight %d interrupted: %w", flightID, ctxErr)
			}
			retryable = true
			log.WarnContext(ctx, "seat compare-and-set failed",
				slog.String("seat_id", seatID),
				slog.String("error", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err).Error()))
		}

		c.compensate(ctx, log, flightID, attemptID, held)

		conflicts := append([]string{seatID}, c.bookedAmong(ctx, seatIDs[i+1:])...)
		result := &domain.BookingResult{
			Status:           domain.BookingConflict,
			FlightID:         flightID,
			AttemptID:        attemptID,
			ConflictingSeats: conflicts,
			Retryable:        retryable,
		}
		log.InfoContext(ctx, "booking conflicted", slog.Any("conflicting_seats", conflicts), slog.Bool("retryable", retryable))
		c.afterAttempt(ctx, result, seatIDs)
		return result, nil
	}

	result := &domain.BookingResult{
		Status:      domain.BookingSuccess,
		FlightID:    flightID,
		AttemptID:   attemptID,
		BookedSeats: seatIDs,
	}
	log.InfoContext(ctx, "booking committed", slog.Int("seats", len(seatIDs)))
	c.afterAttempt(ctx, result, seatIDs)
	return result, nil
}

func (c *BookingCoordinator) tryBook(ctx context.Context, seatID, holder string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.seatTimeout)
	defer cancel()
	return c.store.TryBook(ctx, seatID, domain.SeatAvailable, holder)
}

// compensate releases held seats in reverse order. It ignores the caller's
// cancellation; seats that cannot be released are published for the worker.
func (c *BookingCoordinator) compensate(ctx context.Context, log *slog.Logger, flightID int64, holder string, held []string) {
	if len(held) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var leaked []string
	for i := len(held) - 1; i >= 0; i-- {
		if err := c.release(ctx, held[i], holder); err != nil {
			log.ErrorContext(ctx, "compensation release failed", slog.String("seat_id", held[i]), slog.String("error", err.Error()))
			leaked = append(leaked, held[i])
		}
	}
	if len(leaked) == 0 {
		return
	}
	slices.Sort(leaked)
	c.publish(ctx, kafka.BookingEvent{
		Type:        kafka.EventCompensationFailed,
		AttemptID:   holder,
		FlightID:    flightID,
		SeatIDs:     held,
		LeakedSeats: leaked,
		Holder:      holder,
		At:          c.now(),
	})
}

// release retries a holder-guarded Release. A seat that is not held by
// holder, or no longer exists, needs no release.
func (c *BookingCoordinator) release(ctx context.Context, seatID, holder string) error {
	var lastErr error
	for attempt := 1; attempt <= c.releaseAttempts; attempt++ {
		rctx, cancel := context.WithTimeout(ctx, c.seatTimeout)
		_, err := c.store.Release(rctx, seatID, holder)
		cancel()
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		lastErr = err
		if attempt < c.releaseAttempts {
			time.Sleep(time.Duration(attempt) * c.releaseBackoff)
		}
	}
	return fmt.Errorf("release seat %s after %d attempts: %w", seatID, c.releaseAttempts, lastErr)
}

// bookedAmong reports which of the not yet attempted seats already read as
// BOOKED. Read failures are ignored.
func (c *BookingCoordinator) bookedAmong(ctx context.Context, seatIDs []string) []string {
	ctx = context.WithoutCancel(ctx)
	var booked []string
	for _, seatID := range seatIDs {
		sctx, cancel := context.WithTimeout(ctx, c.seatTimeout)
		status, err := c.store.StatusOf(sctx, seatID)
		cancel()
		if err == nil && status == domain.SeatBooked {
			booked = append(booked, seatID)
		}
	}
	return booked
}

func (c *BookingCoordinator) afterAttempt(ctx context.Context, result *domain.BookingResult, seatIDs []string) {
	ctx = context.WithoutCancel(ctx)
	if c.cache != nil {
		ictx, cancel := context.WithTimeout(ctx, c.publishTimeout)
		err := c.cache.InvalidateSeats(ictx, result.FlightID)
		cancel()
		if err != nil {
			c.log.WarnContext(ctx, "invalidate seat cache",
				slog.Int64("flight_id", result.FlightID), slog.String("error", err.Error()))
		}
	}
	c.publish(ctx, kafka.EventFromResult(*result, seatIDs, c.now()))
}

// publish is best effort and gives up after publishTimeout.
func (c *BookingCoordinator) publish(ctx context.Context, event kafka.BookingEvent) {
	if c.producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()
	if err := c.producer.PublishBookingEvent(ctx, event); err != nil {
		c.log.WarnContext(ctx, "publish booking event",
			slog.String("type", string(event.Type)),
			slog.Int64("flight_id", event.FlightID),
			slog.String("attempt_id", event.AttemptID),
			slog.String("error", err.Error()))
	}
}

func normalizeSeatIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: blank seat id", domain.ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func missingSeats(seatIDs []string, known []domain.Seat) []string {
	index := make(map[string]struct{}, len(known))
	for _, s := range known {
		index[s.ID] = struct{}{}
	}
	var missing []string
	for _, id := range seatIDs {
		if _, ok := index[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func fingerprint(sortedIDs []string) string {
	return strings.Join(sortedIDs, ",")
}

func replay(attempt domain.BookingAttempt, fp string) (*domain.BookingResult, error) {
	if attempt.Fingerprint != fp {
		return nil, fmt.Errorf("key %s: %w", attempt.Key, domain.ErrIdempotencyKeyReused)
	}
	result := attempt.Result
	result.BookedSeats = slices.Clone(result.BookedSeats)
	result.ConflictingSeats = slices.Clone(result.ConflictingSeats)
	return &result, nil
}

var _ BookingUseCase = (*BookingCoordinator)(nil)
