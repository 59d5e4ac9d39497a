package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultProbeInterval = 10 * time.Second
	defaultMaxBackoff    = 30 * time.Second
	defaultProbeTimeout  = 3 * time.Second
)

// Pinger is implemented by every store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Manager dials the store in the background, probes it periodically and
// publishes the result as a State. It starts Disconnected.
type Manager struct {
	pinger        Pinger
	onConnect     func(ctx context.Context) error
	logger        *slog.Logger
	metrics       *Metrics
	probeInterval time.Duration
	maxBackoff    time.Duration
	probeTimeout  time.Duration

	state    atomic.Int32
	prepared atomic.Bool
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithOnConnect runs fn after the first successful ping, before the state
// becomes Connected. A failing fn counts as a failed dial. It runs once per
// process.
func WithOnConnect(fn func(ctx context.Context) error) Option {
	return func(m *Manager) { m.onConnect = fn }
}

func WithProbeInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.probeInterval = d
		}
	}
}

func WithMaxBackoff(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxBackoff = d
		}
	}
}

func New(pinger Pinger, opts ...Option) *Manager {
	m := &Manager{
		pinger:        pinger,
		logger:        slog.Default(),
		probeInterval: defaultProbeInterval,
		maxBackoff:    defaultMaxBackoff,
		probeTimeout:  defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State is safe for concurrent use.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Run alternates between dialing with exponential backoff and probing until
// ctx is cancelled. It always returns ctx.Err().
func (m *Manager) Run(ctx context.Context) error {
	for {
		if err := m.dial(ctx); err != nil {
			return ctx.Err()
		}
		m.set(ctx, Connected)
		m.probe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.set(ctx, Disconnected)
	}
}

// Connect performs one dial attempt without retrying.
func (m *Manager) Connect(ctx context.Context) error {
	if err := m.attempt(ctx); err != nil {
		return err
	}
	m.set(ctx, Connected)
	return nil
}

func (m *Manager) dial(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = m.maxBackoff
	b.MaxElapsedTime = 0
	if b.InitialInterval > m.maxBackoff {
		b.InitialInterval = m.maxBackoff
	}

	notify := func(err error, next time.Duration) {
		m.logger.WarnContext(ctx, "store dial failed",
			"error", err,
			"retry_in", next.String(),
		)
	}
	return backoff.RetryNotify(func() error {
		return m.attempt(ctx)
	}, backoff.WithContext(b, ctx), notify)
}

func (m *Manager) attempt(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	if err := m.pinger.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	if m.onConnect != nil && !m.prepared.Load() {
		if err := m.onConnect(ctx); err != nil {
			return fmt.Errorf("prepare store: %w", err)
		}
		m.prepared.Store(true)
	}
	return nil
}

// probe returns on the first failed ping or when ctx ends.
func (m *Manager) probe(ctx context.Context) {
	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
			err := m.pinger.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					m.logger.ErrorContext(ctx, "store health probe failed", "error", err)
				}
				return
			}
		}
	}
}

func (m *Manager) set(ctx context.Context, s State) {
	prev := State(m.state.Swap(int32(s)))
	if prev == s {
		return
	}
	m.logger.InfoContext(ctx, "store connection state changed",
		"from", prev.String(),
		"to", s.String(),
	)
	if m.metrics != nil {
		m.metrics.record(s)
	}
}
