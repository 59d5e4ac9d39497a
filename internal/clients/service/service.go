// Package service implements the client view: the joined read, the
// consistency-enforcing create, deletes, seeding and the debug dump.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"clientview/internal/clients/metrics"
	"clientview/internal/connection"
	"clientview/internal/store"
	"clientview/pkg/attrs"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/audit"
	"clientview/pkg/platform/sentinel"
	"clientview/pkg/requestcontext"
)

//go:generate mockgen -destination=mocks/store-mocks.go -package=mocks clientview/internal/store Store

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates reads and writes across the three entity collections.
type Service struct {
	store          store.Store
	conn           connection.StateSource
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. conn gates every store access.
func New(st store.Store, conn connection.StateSource, opts ...Option) *Service {
	s := &Service{
		store:  st,
		conn:   conn,
		logger: slog.Default(),
		tracer: otel.Tracer("clientview/internal/clients/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) connected() bool {
	return s.conn.State() == connection.Connected
}

func errDisconnected() error {
	return dErrors.New(dErrors.CodeUnavailable, "database not connected")
}

// storeError maps a store failure onto a domain error. Driver detail stays in
// the wrapped cause and is never rendered to clients.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "database not connected")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "store operation timed out")
	case errors.Is(err, sentinel.ErrInvalidFilter):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid filter")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, details map[string]any, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  string(event),
		Subject: attrs.ExtractString(attributes, "party_id"),
		Details: details,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
			"request_id", requestID,
		)
	}
}
