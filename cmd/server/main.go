// Command server runs the business directory reconciliation service.
// Wiring only; domain logic lives under internal/.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"bizdir/internal/audit"
	"bizdir/internal/directory"
	"bizdir/internal/jwttoken"
	"bizdir/internal/platform/config"
	"bizdir/internal/platform/httpserver"
	"bizdir/internal/platform/logger"
	"bizdir/internal/platform/postgres"
	platformredis "bizdir/internal/platform/redis"
	"bizdir/internal/ratelimit"
	"bizdir/internal/reconcile"
	"bizdir/internal/reconcile/handler"
	reconcilemetrics "bizdir/internal/reconcile/metrics"
	"bizdir/internal/reconcile/service"
	httptransport "bizdir/internal/transport/http"
)

const auditInboxSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}

	var (
		dirStore     directory.Store
		requestStore reconcile.Store
		txRunner     service.Tx
	)
	if db != nil {
		dirStore = directory.NewPostgresStore(db)
		requestStore = reconcile.NewPostgresStore(db)
		txRunner = service.NewSQLTx(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		dirStore = directory.NewInMemoryStore()
		requestStore = reconcile.NewInMemoryStore()
		txRunner = service.NewMemoryTx()
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, ratelimit.Config{
			Limit:  cfg.SubmitLimit,
			Window: cfg.SubmitWindow,
		})
	} else {
		log.Warn("REDIS_URL not set, submission rate limiting is per-process")
		limiter = ratelimit.NewMemoryLimiter(ratelimit.Config{
			Limit:  cfg.SubmitLimit,
			Window: cfg.SubmitWindow,
		})
	}

	inbox := make(chan audit.Event, auditInboxSize)
	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), inbox, log)
	auditPublisher := audit.NewPublisher(inbox, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "bizdir", "bizdir")
	m := reconcilemetrics.New()
	svc := service.NewService(dirStore, requestStore, txRunner, auditPublisher, m, log)

	router := httptransport.NewRouter(log, db, rawRedis(redisClient),
		handler.New(svc, limiter, jwtService, log),
		handler.NewAdmin(svc, jwtService, cfg.AdminTokenHash, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting bizdir", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func rawRedis(c *platformredis.Client) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
