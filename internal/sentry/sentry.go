// Package sentry reports errors to Sentry when a DSN is configured.
package sentry

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config configures error reporting.
type Config struct {
	DSN         string
	Environment string
	Release     string
}

// Service captures errors. A zero or disabled Service does nothing.
type Service struct {
	enabled bool
}

// New initializes the Sentry SDK. An empty DSN yields a disabled service.
func New(cfg Config) (*Service, error) {
	if cfg.DSN == "" {
		slog.Info("Sentry is disabled")
		return &Service{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Sentry initialized", "environment", cfg.Environment)
	return &Service{enabled: true}, nil
}

// Enabled reports whether events are sent.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// CaptureException reports err with tags attached to the event.
func (s *Service) CaptureException(ctx context.Context, err error, tags map[string]string) {
	if !s.Enabled() || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

// AddBreadcrumb records a breadcrumb on the current scope.
func (s *Service) AddBreadcrumb(category, message string, data map[string]interface{}) {
	if !s.Enabled() {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
		Data:     data,
	})
}

// Flush waits for queued events to be sent.
func (s *Service) Flush(timeout time.Duration) bool {
	if !s.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
