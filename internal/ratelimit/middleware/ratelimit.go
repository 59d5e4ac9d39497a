package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"clientview/internal/ratelimit/metrics"
	"clientview/internal/ratelimit/models"
	"clientview/internal/ratelimit/observability"
	"clientview/pkg/platform/audit"
	"clientview/pkg/platform/circuit"
	"clientview/pkg/platform/httputil"
	"clientview/pkg/requestcontext"
)

// HeaderStatus is set to StatusDegraded while the fallback store is serving.
const (
	HeaderStatus   = "X-RateLimit-Status"
	StatusDegraded = "degraded"
)

// BucketStore is implemented by the sliding-window stores in store/bucket.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limit    models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  observability.AuditPublisher
	disabled bool
}

type Option func(*Middleware)

// WithFallback sets the store used while the breaker is open. Without one,
// requests are let through when the primary fails.
func WithFallback(fallback BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

func WithBreaker(breaker *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = breaker
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditor = publisher
	}
}

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(primary BucketStore, limit models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		limit:   limit,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		m.breaker = circuit.New("ratelimit")
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitAdmin limits gateway calls per client address.
func (m *Middleware) RateLimitAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			key := models.NewAdminKey(ip)

			result, degraded, err := m.allow(ctx, key)
			if degraded {
				w.Header().Set(HeaderStatus, StatusDegraded)
			}
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check admin rate limit",
					"error", err,
					"key", key,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Add headers regardless of outcome
			addRateLimitHeaders(w, result)

			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncrementRejected()
				}
				observability.LogAudit(ctx, m.logger, m.auditor, audit.EventRateLimitExceeded,
					"key", key,
					"ip", ip,
					"reason", "window_exhausted",
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow consults the primary store and routes around it while the breaker is
// open. An open breaker keeps probing the primary so it can close again.
func (m *Middleware) allow(ctx context.Context, key string) (*models.RateLimitResult, bool, error) {
	result, err := m.primary.Allow(ctx, key, m.limit.RequestsPerWindow, m.limit.Window)
	if err != nil {
		if m.metrics != nil {
			m.metrics.IncrementStoreErrors()
		}
		useFallback, change := m.breaker.RecordFailure()
		m.logTransition(ctx, change)
		if !useFallback || m.fallback == nil {
			return nil, false, err
		}
		return m.fromFallback(ctx, key)
	}

	usePrimary, change := m.breaker.RecordSuccess()
	m.logTransition(ctx, change)
	if usePrimary || m.fallback == nil {
		return result, false, nil
	}
	return m.fromFallback(ctx, key)
}

func (m *Middleware) fromFallback(ctx context.Context, key string) (*models.RateLimitResult, bool, error) {
	result, err := m.fallback.Allow(ctx, key, m.limit.RequestsPerWindow, m.limit.Window)
	return result, true, err
}

func (m *Middleware) logTransition(ctx context.Context, change circuit.StateChange) {
	switch {
	case change.Opened:
		m.logger.WarnContext(ctx, "rate limit store failing, switching to in-memory fallback",
			"breaker", m.breaker.Name(),
		)
	case change.Closed:
		m.logger.InfoContext(ctx, "rate limit store recovered",
			"breaker", m.breaker.Name(),
		)
	default:
		return
	}
	if m.metrics != nil {
		m.metrics.SetBreakerOpen(change.Opened)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests from this IP address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
