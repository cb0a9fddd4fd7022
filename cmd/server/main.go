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

	"github.com/workforce-ai/corsgate/internal/api"
	"github.com/workforce-ai/corsgate/internal/api/handlers"
	"github.com/workforce-ai/corsgate/internal/audit"
	"github.com/workforce-ai/corsgate/internal/bootstrap"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/db"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/origins"
	"github.com/workforce-ai/corsgate/internal/repository"
)

const auditBuffer = 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured JSON logging
	slog.SetDefault(bootstrap.NewLogger(cfg.Server.LogLevel))
	slog.Info("starting corsgate service", "env", cfg.Server.Env, "auth_mode", cfg.Auth.Mode)

	policy, err := origins.Parse(cfg.CORS.AllowedOrigins)
	if err != nil {
		slog.Error("invalid allowed origins", "error", err)
		os.Exit(1)
	}
	slog.Info("cors policy loaded", "origins", policy.List(), "credentials", cfg.CORS.AllowCredentials)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Pinger{}

	rdb := bootstrap.NewRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	verifier, err := bootstrap.NewVerifier(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to build verifier", "error", err)
		os.Exit(1)
	}

	deps := api.Deps{
		Config:   cfg,
		Policy:   policy,
		Verifier: verifier,
		Metrics:  metrics.NewCollector(),
		Recorder: audit.Nop{},
		Checks:   checks,
	}

	if cfg.Database.AuditEnabled {
		pool, err := db.ConnectWithRetry(ctx, cfg.Database, 30, 2*time.Second)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		repo := repository.NewAuditRepository(pool)
		recorder := audit.NewAsync(repo, auditBuffer, 5*time.Second)
		defer recorder.Close()

		deps.Recorder = recorder
		deps.Events = repo
		checks["database"] = pool

		if cfg.Database.Retention > 0 {
			go audit.RunRetention(ctx, repo, cfg.Database.Retention, time.Hour)
		}
	}

	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server listening",
			"port", cfg.Server.Port,
			"service", "corsgate",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server exited")
}
