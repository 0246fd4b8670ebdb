package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/familyauth/internal/auth"
	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/db"
	httpx "github.com/geocoder89/familyauth/internal/http"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/geocoder89/familyauth/internal/ratelimit"
	"github.com/geocoder89/familyauth/internal/redisclient"
	"github.com/geocoder89/familyauth/internal/repo/postgres"
	"github.com/geocoder89/familyauth/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("api exited", observability.Err(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	if cfg.UsesDefaultSecret() {
		if !cfg.IsDev() {
			return errors.New("JWT_SECRET must be set outside dev")
		}
		log.Warn("using the built-in development JWT secret")
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	seeded, err := db.EnsureAdminUser(ctx, pool, cfg, hasher)
	if err != nil {
		return err
	}
	if seeded {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	var store ratelimit.Store = ratelimit.NewMemoryStore()

	if cfg.RedisAddr != "" {
		rdb, err := redisclient.Connect(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, rate limiting per instance", observability.Err(err))
		} else {
			defer rdb.Close()
			store = ratelimit.NewRedisStore(rdb.Raw())
		}
	}

	router := httpx.NewRouter(cfg, httpx.Deps{
		Users:    postgres.NewUsersRepo(pool, prom),
		Profiles: postgres.NewProfilesRepo(pool, prom),
		Family:   postgres.NewFamilyMembersRepo(pool, prom),
		Tokens:   auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Hasher:   hasher,
		Limiter:  ratelimit.New(store, cfg.AuthRateLimit, cfg.AuthRateWindow),
		Prom:     prom,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:     pool.Ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")

	return nil
}
