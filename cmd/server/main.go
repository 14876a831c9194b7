// Command server wires the care engine together: configuration, stores,
// alert publisher, services, handlers, and the HTTP server lifecycle.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"careflow/internal/alerts"
	"careflow/internal/child"
	childhandler "careflow/internal/child/handler"
	"careflow/internal/matching"
	matchinghandler "careflow/internal/matching/handler"
	matchingmetrics "careflow/internal/matching/metrics"
	"careflow/internal/missing"
	missinghandler "careflow/internal/missing/handler"
	missingmetrics "careflow/internal/missing/metrics"
	"careflow/internal/placement"
	placementhandler "careflow/internal/placement/handler"
	"careflow/internal/platform/config"
	"careflow/internal/platform/httpserver"
	"careflow/internal/platform/logger"
	"careflow/internal/platform/metrics"
	"careflow/internal/platform/postgres"
	platformredis "careflow/internal/platform/redis"
	"careflow/internal/risk"
	riskhandler "careflow/internal/risk/handler"
	httptransport "careflow/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres setup failed", "error", err.Error())
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var publisher alerts.Publisher = alerts.NewMemoryPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := alerts.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, log)
		if err != nil {
			log.Error("kafka setup failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Placement and missing-episode stores carry the two invariant-bearing
	// writes; they move to postgres when configured. Children and risk
	// history stay in memory, with redis fronting the latest assessments.
	var (
		placementStore placement.Store   = placement.NewMemoryStore()
		placementTx    placement.StoreTx = placement.NewShardedTx(placementStore)
		missingStore   missing.Store     = missing.NewMemoryStore()
		missingTx      missing.StoreTx   = missing.NewShardedTx(missingStore)
	)
	if pool != nil {
		placementStore = placement.NewPostgresStore(pool)
		placementTx = placement.NewPostgresTx(pool)
		missingStore = missing.NewPostgresStore(pool)
		missingTx = missing.NewPostgresTx(pool)
	}

	var riskCache risk.Cache = risk.NewMemoryCache()
	if redisClient != nil {
		riskCache = risk.NewRedisCache(redisClient.Client, cfg.Redis.CacheTTL)
	}

	childService := child.NewService(child.NewMemoryStore(), publisher, log)
	placementService := placement.NewService(placementStore, placementTx, log)
	riskService := risk.NewService(risk.NewMemoryStore(), riskCache, publisher, log)
	matchingService := matching.NewService(riskService, log, matchingmetrics.New())
	missingService := missing.NewService(missingStore, missingTx, placementService, publisher, log, missingmetrics.New())

	directory := matching.NewStaticDirectory(nil)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: cfg.RequestTimeout,
		Children:       childhandler.New(childService, log),
		Placements:     placementhandler.New(placementService, log),
		Matching:       matchinghandler.New(matchingService, childService, directory, log),
		Missing:        missinghandler.New(missingService, log),
		Risk:           riskhandler.New(riskService, placementService, log),
		Health: func(ctx context.Context) error {
			if pool != nil {
				if err := pool.Ping(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting careflow", "addr", cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
