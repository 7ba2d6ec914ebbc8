// Command searcher runs the TF-IDF search service.
//
// It serves inserts and ranked queries over HTTP, optionally consumes
// documents from the Kafka ingest topic and caches results in Redis.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml] [-demo]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	demo := flag.Bool("demo", false, "seed the sample corpus and log a sample query")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *demo); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(ctx context.Context, cfg *config.Config, demo bool) error {
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"analyzer", cfg.Indexer.Analyzer,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	engine, err := indexer.NewEngine(ctx, cfg.Indexer, st,
		indexer.WithMetrics(m),
		indexer.WithLogger(logger.WithComponent("indexer")),
	)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()
	slog.Info("engine ready", "docs", engine.TotalDocs(), "vocabulary_size", engine.VocabularySize())

	if demo {
		if err := seedDemo(ctx, engine); err != nil {
			return fmt.Errorf("seeding demo corpus: %w", err)
		}
	}

	checker := health.NewChecker()
	checker.Register("index_engine", health.Required(engine))

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			checker.Register("redis", health.Optional(redisClient))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Kafka.Enabled {
		topic := cfg.Kafka.Topics.DocumentIngest
		ic := consumer.New(kafka.NewConsumer(cfg.Kafka, topic, consumer.HandleMessage(engine)))
		go func() {
			if err := ic.Start(ctx); err != nil {
				slog.Error("index consumer stopped", "error", err)
			}
		}()
		slog.Info("ingest consumer started", "topic", topic, "group", cfg.Kafka.ConsumerGroup)
	}

	exec := executor.New(engine, m)
	h := handler.New(exec, engine, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler(reg))

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Metrics(m),
			middleware.Timeout(cfg.Server.WriteTimeout),
		),
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
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		st, err := store.NewSQL(ctx, db, store.Postgres)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("postgres document store ready", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		return st, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
		st, err := store.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite document store ready", "path", cfg.Store.SQLitePath)
		return st, nil
	default:
		return store.NewMemory(), nil
	}
}
