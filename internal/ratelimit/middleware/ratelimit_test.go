package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clientview/internal/ratelimit/models"
	"clientview/internal/ratelimit/store/bucket"
	"clientview/pkg/platform/audit"
	"clientview/pkg/platform/circuit"
	"clientview/pkg/requestcontext"
)

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.RateLimitResult{Allowed: true, Limit: 2, Remaining: 1, ResetAt: time.Now().Add(time.Minute)}, nil
}

type recordingPublisher struct {
	events []audit.Event
}

func (p *recordingPublisher) Emit(_ context.Context, e audit.Event) error {
	p.events = append(p.events, e)
	return nil
}

type RateLimitMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
	limit  models.Limit
}

func TestRateLimitMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(RateLimitMiddlewareSuite))
}

func (s *RateLimitMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.limit = models.Limit{RequestsPerWindow: 2, Window: time.Minute}
}

func (s *RateLimitMiddlewareSuite) serve(m *Middleware, ip string) *httptest.ResponseRecorder {
	h := m.RateLimitAdmin()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/admin/set", nil)
	req = req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *RateLimitMiddlewareSuite) TestRejectsOverLimit() {
	pub := &recordingPublisher{}
	m := New(bucket.NewInMemoryBucketStore(), s.limit, s.logger, WithAuditPublisher(pub))

	s.Equal(http.StatusOK, s.serve(m, "10.0.0.1").Code)
	rec := s.serve(m, "10.0.0.1")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = s.serve(m, "10.0.0.1")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.NotEmpty(rec.Header().Get("Retry-After"))
	s.Equal("2", rec.Header().Get("X-RateLimit-Limit"))
	s.Contains(rec.Body.String(), "rate_limit_exceeded")

	s.Require().Len(pub.events, 1)
	s.Equal("rate_limit_exceeded", pub.events[0].Action)
	s.Equal("admin:10.0.0.1", pub.events[0].Subject)

	s.Run("other addresses have their own bucket", func() {
		s.Equal(http.StatusOK, s.serve(m, "10.0.0.2").Code)
	})
}

func (s *RateLimitMiddlewareSuite) TestFailsOpenWithoutFallback() {
	primary := &failingStore{err: errors.New("redis down")}
	m := New(primary, s.limit, s.logger)

	for range 10 {
		rec := s.serve(m, "10.0.0.1")
		s.Equal(http.StatusOK, rec.Code)
		s.Empty(rec.Header().Get(HeaderStatus))
	}
}

func (s *RateLimitMiddlewareSuite) TestBreakerSwitchesToFallback() {
	primary := &failingStore{err: errors.New("redis down")}
	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
	m := New(primary, s.limit, s.logger,
		WithFallback(bucket.NewInMemoryBucketStore()),
		WithBreaker(breaker),
	)

	rec := s.serve(m, "10.0.0.1")
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Header().Get(HeaderStatus), "below threshold the primary error fails open")

	rec = s.serve(m, "10.0.0.1")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(StatusDegraded, rec.Header().Get(HeaderStatus))
	s.True(breaker.IsOpen())

	rec = s.serve(m, "10.0.0.1")
	s.Equal(StatusDegraded, rec.Header().Get(HeaderStatus))
	s.Equal(http.StatusOK, rec.Code)

	rec = s.serve(m, "10.0.0.1")
	s.Equal(http.StatusTooManyRequests, rec.Code, "fallback enforces the same limit")

	s.Run("recovers after consecutive successes", func() {
		primary.err = nil
		rec := s.serve(m, "10.0.0.3")
		s.Equal(StatusDegraded, rec.Header().Get(HeaderStatus))
		rec = s.serve(m, "10.0.0.3")
		s.Empty(rec.Header().Get(HeaderStatus))
		s.False(breaker.IsOpen())
	})
}

func (s *RateLimitMiddlewareSuite) TestDisabled() {
	primary := &failingStore{}
	m := New(primary, s.limit, s.logger, WithDisabled(true))
	s.Equal(http.StatusOK, s.serve(m, "10.0.0.1").Code)
	s.Equal(0, primary.calls)
}
