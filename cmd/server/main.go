// Command server runs the watch-collection accuracy-tracking API.
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/cache"
	"github.com/Homoney/watch-collection-tracker/internal/clock"
	"github.com/Homoney/watch-collection-tracker/internal/closer"
	"github.com/Homoney/watch-collection-tracker/internal/config"
	"github.com/Homoney/watch-collection-tracker/internal/httpapi"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
	"github.com/Homoney/watch-collection-tracker/internal/metrics"
	"github.com/Homoney/watch-collection-tracker/internal/pprof"
	"github.com/Homoney/watch-collection-tracker/internal/safe"
	"github.com/Homoney/watch-collection-tracker/internal/storage/postgres"
	"github.com/Homoney/watch-collection-tracker/internal/timesource"
)

func main() {
	if err := run(context.Background()); err != nil {
		logging.L(context.Background()).Error("server exited", logging.ErrAttr(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(logging.WithLevel(cfg.LogLevel))
	ctx = logging.ContextWithLogger(ctx, logger)

	lc := closer.NewLIFOCloser()

	pool, err := postgres.NewPool(ctx, postgres.NewConfig(cfg.DatabaseURL))
	if err != nil {
		return err
	}
	lc.Add(closer.CloserFunc(func() error {
		pool.Close()
		return nil
	}))

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	clk := clock.New()

	worldTime := timesource.NewWorldTimeClient(timesource.WithBaseURL(cfg.TimeAPIURL))
	timeProvider := timesource.NewProvider(worldTime, clk)

	serviceOpts := []accuracy.ServiceOption{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cache.NewConfig(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err != nil {
			return err
		}
		lc.Add(redisClient)
		serviceOpts = append(serviceOpts,
			accuracy.WithAnalyticsCache(cache.NewAnalyticsCache(redisClient, cfg.AnalyticsTTL)))
	}

	service := accuracy.NewService(
		postgres.NewReadingRepository(pool),
		postgres.NewWatchGuard(pool),
		timeProvider,
		clk,
		serviceOpts...,
	)

	handler := httpapi.NewHandler(service, timeProvider, clk)
	router := httpapi.NewRouter(handler,
		logging.Middleware,
		metrics.RequestDurationMiddleware,
	)

	apiServer := &http.Server{
		Addr:              cfg.HTTPHost + ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Add(closer.CloserFunc(apiServer.Close))

	metricsServer, err := metrics.NewServer(metrics.NewConfig(
		metrics.WithHost(cfg.HTTPHost),
		metrics.WithPort(cfg.MetricsPort),
	))
	if err != nil {
		return err
	}
	lc.Add(closer.CloserFunc(metricsServer.Close))

	group, _ := safe.WithContext(ctx)

	group.Go(func(ctx context.Context) error {
		logger.Info("api server listening", logging.StringAttr("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func(ctx context.Context) error {
		if err := metricsServer.Run(ctx); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.PprofEnabled {
		pprofServer := pprof.NewServer(pprof.Config{
			Host:              cfg.HTTPHost,
			Port:              cfg.PprofPort,
			ReadHeaderTimeout: 5 * time.Second,
		})
		lc.Add(closer.CloserFunc(pprofServer.Close))
		group.Go(func(ctx context.Context) error {
			if err := pprofServer.Run(ctx); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	group.Go(func(ctx context.Context) error {
		return closer.CloseOnSignalWithContext(ctx, lc, syscall.SIGINT, syscall.SIGTERM)
	})

	return group.Wait()
}
