// cmd/coordinator/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"volunteerhub/internal/common/auth"
	"volunteerhub/internal/common/config"
	"volunteerhub/internal/common/database"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/common/observability"
	"volunteerhub/internal/ledger"
	"volunteerhub/internal/lifecycle"
	"volunteerhub/internal/registry"
	"volunteerhub/internal/reservation"
	"volunteerhub/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting coordinator",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.Server.Address),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected")

	// --- Init Redis (listing cache only; degraded but functional without it) ---
	var cache *registry.Cache
	if cfg.Cache.Enabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil || rdb.Ping(ctx) != nil {
			zapLog.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = registry.NewCache(rdb.GetClient(), time.Duration(cfg.Cache.OpenJobTTL)*time.Second, log)
			zapLog.Info("Redis connected")
		}
	}

	// --- Wire components ---
	reg := registry.New(pg.GetDB(), cache, log)
	led := ledger.New(pg.GetDB(), log)
	coord := reservation.New(pg.GetDB(), cache, obs, log)
	adv := lifecycle.New(led, log)
	validator := auth.NewTokenValidator(cfg.Auth.JWTSecret)

	srv := server.New(reg, led, coord, adv, validator, pg, log)

	apiServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddress,
		Handler: metricsMux,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		zapLog.Info("API server listening", zap.String("address", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		zapLog.Info("metrics server listening", zap.String("address", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		zapLog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Fatal("server error", zap.Error(err))
	}
	zapLog.Info("coordinator stopped")
}
