package main

import (
	"context"
	"net/http"
	"os"

	"github.com/bolao-platform/bolao-backend/api/routes"
	"github.com/bolao-platform/bolao-backend/internal/accounts"
	"github.com/bolao-platform/bolao-backend/internal/cycle"
	"github.com/bolao-platform/bolao-backend/internal/draws"
	"github.com/bolao-platform/bolao-backend/internal/export"
	"github.com/bolao-platform/bolao-backend/internal/ranking"
	"github.com/bolao-platform/bolao-backend/internal/settlement"
	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/metrics"
	"github.com/bolao-platform/bolao-backend/pkg/migrate"
	"github.com/bolao-platform/bolao-backend/pkg/pubsub"
	"github.com/bolao-platform/bolao-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var notifier *export.Notifier
	if cfg.FeatureFlags.ExportSink {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()

		sink, err := export.NewPubSubSink(pubsubClient.TicketExportPublisher())
		if err != nil {
			logg.Error(context.Background(), "failed to create export sink", err)
			os.Exit(1)
		}
		notifier = export.NewNotifier(sink, logg)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	accountRepo := accounts.NewRepository(dbClient.DB())
	ticketRepo := tickets.NewRepository(dbClient.DB())
	drawRepo := draws.NewRepository(dbClient.DB())
	historyRepo := cycle.NewRepository(dbClient.DB())

	accountService, err := accounts.NewService(dbClient, accountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	ticketService, err := tickets.NewService(ticketRepo, drawRepo, cfg.Game.PickCount, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ticket service", err)
		os.Exit(1)
	}

	rankingService, err := ranking.NewService(ticketRepo, drawRepo, redisClient, cfg.Game.BoardSize, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ranking service", err)
		os.Exit(1)
	}

	drawService, err := draws.NewService(dbClient, drawRepo, ticketService, rankingService, cfg.Game, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create draw service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(dbClient, accountRepo, ticketRepo, notifier, cfg.Game, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	cycleService, err := cycle.NewService(dbClient, historyRepo, ticketRepo, drawRepo, rankingService, cfg.Game, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cycle service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry,
			accountService, settlementService, ticketService, drawService, rankingService, cycleService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
