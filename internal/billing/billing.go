// Package billing implements bill issuance and the owner-scoped reads and
// settings around it.
//
// Every operation takes the owner ID resolved by the transport layer. Bills,
// profiles and customers of other owners are reported as not found.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/pdf"
	"github.com/mmynk/billdesk/internal/storage"
)

// Renderer turns a bill document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc pdf.Document) ([]byte, error)
}

// LogoSource reads a stored logo by URL.
type LogoSource interface {
	Open(ctx context.Context, url string) ([]byte, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// storeError classifies a storage failure.
func storeError(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ierr.WithError(err).
			WithHintf("%s not found", what).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Could not access %s, please retry", what).
		Mark(ierr.ErrPersistence)
}

func requireOwner(ownerID string) error {
	if ownerID == "" {
		return ierr.NewError("no owner on request").
			WithHint("Please log in").
			Mark(ierr.ErrUnauthorized)
	}
	return nil
}

// withTimeout runs fn under its own deadline and returns when either fn
// finishes or the deadline passes. A stuck fn is abandoned, not awaited.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
