// Package service implements the administrative mutation gateway: filtered
// set, unset and delete over the document store, with per-call counts only.
package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"clientview/internal/admin/metrics"
	"clientview/internal/admin/models"
	"clientview/internal/connection"
	"clientview/internal/document"
	"clientview/internal/store"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/audit"
	"clientview/pkg/platform/sentinel"
	stringutil "clientview/pkg/platform/strings"
	"clientview/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          store.Store
	conn           connection.StateSource
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

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

func New(st store.Store, conn connection.StateSource, opts ...Option) *Service {
	s := &Service{
		store:  st,
		conn:   conn,
		logger: slog.Default(),
		tracer: otel.Tracer("clientview/internal/admin/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFields assigns values on every document matching the filter.
func (s *Service) SetFields(ctx context.Context, m models.Mutation) (*models.UpdateResult, error) {
	ctx, span := s.start(ctx, models.OpSet, m)
	defer span.End()

	if err := s.validate(m); err != nil {
		return nil, err
	}
	if len(m.Set) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing set")
	}

	update := document.Update{Set: store.NormalizeKeys(m.Collection, m.Set.Clone())}
	res, err := s.store.UpdateMany(ctx, m.Collection, m.Filter, update)
	if err != nil {
		span.RecordError(err)
		return nil, storeError(err, "failed to apply set")
	}
	s.record(ctx, models.OpSet, audit.EventAdminSetApplied, m, res.Modified, map[string]any{
		"matched":  res.Matched,
		"modified": res.Modified,
		"fields":   fieldNames(m.Set),
	})
	return &models.UpdateResult{Matched: res.Matched, Modified: res.Modified}, nil
}

// UnsetFields removes the named fields from every matching document.
func (s *Service) UnsetFields(ctx context.Context, m models.Mutation) (*models.UpdateResult, error) {
	ctx, span := s.start(ctx, models.OpUnset, m)
	defer span.End()

	if err := s.validate(m); err != nil {
		return nil, err
	}
	fields := stringutil.DedupeAndTrim(m.Unset)
	if len(fields) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing unset")
	}

	res, err := s.store.UpdateMany(ctx, m.Collection, m.Filter, document.Update{Unset: fields})
	if err != nil {
		span.RecordError(err)
		return nil, storeError(err, "failed to apply unset")
	}
	s.record(ctx, models.OpUnset, audit.EventAdminUnsetApplied, m, res.Modified, map[string]any{
		"matched":  res.Matched,
		"modified": res.Modified,
		"fields":   fields,
	})
	return &models.UpdateResult{Matched: res.Matched, Modified: res.Modified}, nil
}

// DeleteMany removes every matching document. An empty filter empties the
// collection.
func (s *Service) DeleteMany(ctx context.Context, m models.Mutation) (int64, error) {
	ctx, span := s.start(ctx, models.OpDelete, m)
	defer span.End()

	if err := s.validate(m); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteMany(ctx, m.Collection, m.Filter)
	if err != nil {
		span.RecordError(err)
		return 0, storeError(err, "failed to apply delete")
	}
	s.record(ctx, models.OpDelete, audit.EventAdminDeleteApplied, m, n, map[string]any{
		"deleted": n,
	})
	return n, nil
}

func (s *Service) start(ctx context.Context, op models.Op, m models.Mutation) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "admin."+string(op), trace.WithAttributes(
		attribute.String("clientview.collection", m.Collection),
		attribute.String("clientview.scope", m.Scope.String()),
		attribute.Int("clientview.filter_fields", len(m.Filter)),
	))
}

func (s *Service) validate(m models.Mutation) error {
	if strings.TrimSpace(m.Collection) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Missing collection")
	}
	switch m.Scope {
	case models.ScopeAllowListed:
		if !store.IsKnownCollection(m.Collection) {
			return dErrors.New(dErrors.CodeBadRequest, "collection not allowed: "+m.Collection)
		}
	case models.ScopeRaw:
		if !store.ValidCollectionName(m.Collection) {
			return dErrors.New(dErrors.CodeBadRequest, "invalid collection name")
		}
	}
	if s.conn.State() != connection.Connected {
		return dErrors.New(dErrors.CodeUnavailable, "database not connected")
	}
	return nil
}

func (s *Service) record(ctx context.Context, op models.Op, event audit.AuditEvent, m models.Mutation, affected int64, details map[string]any) {
	if s.metrics != nil {
		s.metrics.RecordMutation(string(op), m.Collection, store.IsKnownCollection(m.Collection), affected)
	}

	details["filter"] = map[string]any(m.Filter)
	details["scope"] = m.Scope.String()
	reason := ""
	if m.Scope == models.ScopeRaw {
		reason = "raw_access"
	}

	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"collection", m.Collection,
		"scope", m.Scope.String(),
		"affected", affected,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  string(event),
		Subject: m.Collection,
		Reason:  reason,
		Details: details,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
			"request_id", requestID,
		)
	}
}

func fieldNames(d document.Document) []string {
	return slices.Sorted(maps.Keys(d))
}

func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "database not connected")
	case errors.Is(err, sentinel.ErrInvalidFilter):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid filter")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "store operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
