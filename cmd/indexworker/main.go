package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/ingest"
	"github.com/campusqa/forumsearch/internal/search"
	"github.com/campusqa/forumsearch/pkg/config"
	"github.com/campusqa/forumsearch/pkg/kafka"
	"github.com/campusqa/forumsearch/pkg/logger"
	"github.com/campusqa/forumsearch/pkg/metrics"
	"github.com/campusqa/forumsearch/pkg/postgres"
	pkgredis "github.com/campusqa/forumsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index worker", "topic", cfg.Kafka.Topics.PostIndex, "group", cfg.Kafka.ConsumerGroup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	store := index.NewPostgresStore(pg)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to migrate index tables", "error", err)
		os.Exit(1)
	}
	writer := index.NewWriter(store)

	var cache *search.Cache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, stale cache entries will expire by ttl", "error", err)
	} else {
		defer redisClient.Close()
		cache = search.NewCache(redisClient, cfg.Redis)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.PostIndex, ingest.HandleMessage(writer, cache))
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		slog.Error("consumer stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("index worker stopped")
}
