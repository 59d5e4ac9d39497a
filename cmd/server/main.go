package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminHandler "clientview/internal/admin/handler"
	adminMetrics "clientview/internal/admin/metrics"
	adminService "clientview/internal/admin/service"
	clientsHandler "clientview/internal/clients/handler"
	clientsMetrics "clientview/internal/clients/metrics"
	clientsService "clientview/internal/clients/service"
	"clientview/internal/connection"
	jwttoken "clientview/internal/jwt_token"
	"clientview/internal/platform/config"
	"clientview/internal/platform/httpserver"
	"clientview/internal/platform/logger"
	"clientview/internal/platform/metrics"
	"clientview/internal/platform/middleware"
	"clientview/internal/platform/redis"
	rateLimitMetrics "clientview/internal/ratelimit/metrics"
	rateLimitMW "clientview/internal/ratelimit/middleware"
	rateLimitModels "clientview/internal/ratelimit/models"
	"clientview/internal/ratelimit/store/bucket"
	"clientview/internal/store"
	"clientview/internal/store/memory"
	"clientview/internal/store/postgres"
	"clientview/pkg/platform/audit"
	auditpublisher "clientview/pkg/platform/audit/publisher"
	auditkafka "clientview/pkg/platform/audit/store/kafka"
	auditmemory "clientview/pkg/platform/audit/store/memory"
	auditpostgres "clientview/pkg/platform/audit/store/postgres"
	"clientview/pkg/platform/httputil"
	"clientview/pkg/platform/middleware/auth"
	"clientview/pkg/platform/middleware/metadata"
	"clientview/pkg/platform/middleware/requesttime"
)

// main wires the store, audit trail, rate limiter and HTTP surface, then keeps
// serving until SIGINT/SIGTERM. Business logic lives in internal services.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	store    store.Store
	conn     *connection.Manager
	audit    audit.Store
	closers  []func()
	redis    *redis.Client
	inMemory bool
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	inf, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	connCtx, cancelConn := context.WithCancel(ctx)
	defer cancelConn()
	if inf.inMemory {
		if err := inf.conn.Connect(connCtx); err != nil {
			return err
		}
	} else {
		go func() {
			_ = inf.conn.Run(connCtx)
		}()
	}

	publisher := auditpublisher.NewPublisher(inf.audit,
		auditpublisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		auditpublisher.WithLogger(log),
	)
	defer publisher.Close()

	router := buildRouter(cfg, log, inf, publisher)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting clientview", "addr", cfg.Server.Addr, "store_in_memory", inf.inMemory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// buildInfra selects the document and audit stores. With a database URL the
// connection manager dials in the background and migrates on first contact;
// the process serves sample data until then.
func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	inf := &infra{}
	connOpts := []connection.Option{
		connection.WithLogger(log),
		connection.WithMetrics(connection.NewMetrics()),
		connection.WithProbeInterval(cfg.Store.ProbeInterval),
		connection.WithMaxBackoff(cfg.Store.MaxBackoff),
	}

	if cfg.Store.InMemory() {
		mem := memory.New()
		inf.store = mem
		inf.audit = auditmemory.NewInMemoryStore()
		inf.inMemory = true
		inf.conn = connection.New(mem, connOpts...)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		docs := postgres.New(pool)
		auditStore := auditpostgres.New(pool)
		inf.store = docs
		inf.audit = auditStore
		inf.closers = append(inf.closers, docs.Close)
		connOpts = append(connOpts, connection.WithOnConnect(func(ctx context.Context) error {
			if err := docs.Migrate(ctx); err != nil {
				return err
			}
			return auditStore.Migrate(ctx)
		}))
		inf.conn = connection.New(docs, connOpts...)
	}

	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			inf.close()
			return nil, err
		}
		inf.audit = audit.Tee(inf.audit, sink)
		inf.closers = append(inf.closers, sink.Close)
		log.Info("audit events mirrored to kafka", "topic", cfg.Audit.KafkaTopic)
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, rate limiting in process", "error", err)
	} else if client != nil {
		inf.redis = client
		inf.closers = append(inf.closers, func() { _ = client.Close() })
	}
	return inf, nil
}

func buildRouter(cfg config.Config, log *slog.Logger, inf *infra, publisher *auditpublisher.Publisher) chi.Router {
	httpMetrics := metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(httpMetrics))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Backend running OK"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"store":  inf.conn.State().String(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	var validator auth.JWTValidator
	if cfg.Auth.Enabled() {
		validator = jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer).AsValidator()
	}

	clients := clientsService.New(inf.store, inf.conn,
		clientsService.WithLogger(log),
		clientsService.WithAuditPublisher(publisher),
		clientsService.WithMetrics(clientsMetrics.New()),
	)
	clientsHandler.New(clients, log, validator, cfg.Admin.Token).Register(r)

	gateway := adminService.New(inf.store, inf.conn,
		adminService.WithLogger(log),
		adminService.WithAuditPublisher(publisher),
		adminService.WithMetrics(adminMetrics.New()),
	)
	limiter := newRateLimiter(cfg, log, inf, publisher)
	adminHandler.New(gateway, log, cfg.Admin.Token, cfg.Admin.RawToken,
		adminHandler.WithRateLimit(limiter.RateLimitAdmin()),
	).Register(r)

	return r
}

// newRateLimiter prefers Redis, shared across replicas, with the in-process
// window as the breaker fallback. Without Redis the in-process window is primary.
func newRateLimiter(cfg config.Config, log *slog.Logger, inf *infra, publisher *auditpublisher.Publisher) *rateLimitMW.Middleware {
	limit := rateLimitModels.Limit{
		RequestsPerWindow: cfg.RateLimit.AdminLimit,
		Window:            cfg.RateLimit.AdminWindow,
	}
	opts := []rateLimitMW.Option{
		rateLimitMW.WithMetrics(rateLimitMetrics.New()),
		rateLimitMW.WithAuditPublisher(publisher),
		rateLimitMW.WithDisabled(cfg.RateLimit.Disabled),
	}

	local := bucket.NewInMemoryBucketStore()
	if inf.redis == nil {
		return rateLimitMW.New(local, limit, log, opts...)
	}
	opts = append(opts, rateLimitMW.WithFallback(local))
	return rateLimitMW.New(bucket.NewRedisBucketStore(inf.redis.Client), limit, log, opts...)
}
