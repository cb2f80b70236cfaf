// Package sequence allocates per-owner bill numbers.
//
// Allocation reads the owner's highest bill number and persists the next one
// while holding the owner's lock. The store's UNIQUE(owner_id, bill_no)
// constraint backs the lock: if another writer got there first (a second
// process without a shared lock, say), persist reports a duplicate and the
// allocator re-reads and tries again a bounded number of times.
package sequence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
)

// DefaultMaxRetries is how many times a duplicate number is retried.
const DefaultMaxRetries = 5

// NumberSource reports the highest bill number an owner has used.
type NumberSource interface {
	MaxBillNumber(ctx context.Context, ownerID string) (int64, bool, error)
}

// PersistFunc writes a bill with the given number. It must return an error
// wrapping storage.ErrDuplicateBillNo when the number is taken.
type PersistFunc func(ctx context.Context, billNo int64) error

// RetryObserver is notified of each duplicate-number retry.
type RetryObserver func(ownerID string, attempt int)

// Allocator hands out bill numbers.
type Allocator struct {
	source     NumberSource
	locker     Locker
	maxRetries uint64
	interval   time.Duration
	onRetry    RetryObserver
	logger     *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxRetries bounds retries after a duplicate number.
func WithMaxRetries(n int) Option {
	return func(a *Allocator) {
		if n >= 0 {
			a.maxRetries = uint64(n)
		}
	}
}

// WithRetryInterval sets the initial backoff between retries.
func WithRetryInterval(d time.Duration) Option {
	return func(a *Allocator) { a.interval = d }
}

// WithRetryObserver registers a callback for retries (metrics).
func WithRetryObserver(fn RetryObserver) Option {
	return func(a *Allocator) { a.onRetry = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) { a.logger = logger }
}

// NewAllocator creates an Allocator. A nil locker means an in-process lock.
func NewAllocator(source NumberSource, locker Locker, opts ...Option) *Allocator {
	if locker == nil {
		locker = NewLocalLocker()
	}
	a := &Allocator{
		source:     source,
		locker:     locker,
		maxRetries: DefaultMaxRetries,
		interval:   10 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextBillNumber returns the number the owner's next bill would get. It takes
// no lock; the value may be stale by the time it is used.
func (a *Allocator) NextBillNumber(ctx context.Context, ownerID string) (int64, error) {
	max, ok, err := a.source.MaxBillNumber(ctx, ownerID)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Could not read bill numbers").
			Mark(ierr.ErrPersistence)
	}
	if !ok {
		return models.FirstBillNumber, nil
	}
	return max + 1, nil
}

// Allocate picks the owner's next bill number and calls persist with it under
// the owner's lock. It returns the number that was persisted.
func (a *Allocator) Allocate(ctx context.Context, ownerID string, persist PersistFunc) (int64, error) {
	unlock, err := a.locker.Lock(ctx, ownerID)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Could not reserve a bill number, please retry").
			Mark(ierr.ErrConflict)
	}
	defer unlock()

	var (
		billNo  int64
		attempt int
	)
	op := func() error {
		attempt++
		next, err := a.NextBillNumber(ctx, ownerID)
		if err != nil {
			return backoff.Permanent(err)
		}
		billNo = next

		err = persist(ctx, next)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrDuplicateBillNo) {
			return backoff.Permanent(err)
		}

		a.logger.Warn("Bill number taken, retrying",
			"owner_id", ownerID,
			"bill_no", next,
			"attempt", attempt,
		)
		if a.onRetry != nil {
			a.onRetry(ownerID, attempt)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.interval
	policy.MaxInterval = 20 * a.interval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, a.maxRetries), ctx)

	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, storage.ErrDuplicateBillNo) {
			return 0, ierr.WithError(err).
				WithHint("Another bill took this number, please retry").
				WithReportableDetails(map[string]any{"owner_id": ownerID, "attempts": attempt}).
				Mark(ierr.ErrConflict)
		}
		return 0, err
	}
	return billNo, nil
}
