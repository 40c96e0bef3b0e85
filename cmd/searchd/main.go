package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusqa/forumsearch/internal/events"
	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/ingest"
	"github.com/campusqa/forumsearch/internal/search"
	"github.com/campusqa/forumsearch/internal/web"
	"github.com/campusqa/forumsearch/pkg/config"
	"github.com/campusqa/forumsearch/pkg/health"
	"github.com/campusqa/forumsearch/pkg/kafka"
	"github.com/campusqa/forumsearch/pkg/logger"
	"github.com/campusqa/forumsearch/pkg/metrics"
	"github.com/campusqa/forumsearch/pkg/middleware"
	"github.com/campusqa/forumsearch/pkg/postgres"
	pkgredis "github.com/campusqa/forumsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	indexVia := flag.String("index-via", "direct", "index write path: direct or kafka")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "index_via", *indexVia)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
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

	opts := []search.Option{search.WithMetrics(m)}

	var redisClient *pkgredis.Client
	var searchCache *search.Cache
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		searchCache = search.NewCache(redisClient, cfg.Redis)
		opts = append(opts, search.WithCache(searchCache))
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	eventsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer eventsProducer.Close()
	collector := events.NewCollector(eventsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	opts = append(opts, search.WithCollector(collector))

	svc, err := search.New(store, cfg.Search, cfg.Indexer, opts...)
	if err != nil {
		slog.Error("failed to create search service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	var indexer web.Indexer = svc
	if *indexVia == "kafka" {
		indexProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.PostIndex)
		defer indexProducer.Close()
		indexer = ingest.NewPublisher(indexProducer)
		slog.Info("index writes routed through kafka", "topic", cfg.Kafka.Topics.PostIndex)
	}

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := web.New(svc, indexer)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/search", h.SearchGet)
	mux.HandleFunc("POST /api/v1/index", h.Index)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
