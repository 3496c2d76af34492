// Command anagramd serves word and sentence anagram queries over HTTP.
//
// It loads the dictionary from a word file or a PostgreSQL table, builds the
// anagram index, and answers queries from it. Optional collaborators are
// enabled by configuration: a Redis answer cache, a Kafka consumer that
// rebuilds the index on dictionary update notices, and Kafka-backed query
// analytics.
//
// Usage:
//
//	go run ./cmd/anagramd [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/cache"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/handler"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
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
	slog.Info("starting anagram service", "port", cfg.Server.Port, "dictionary_source", cfg.Dictionary.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	checker := health.NewChecker()

	// Dictionary source.
	var provider dictionary.Provider
	switch cfg.Dictionary.Source {
	case config.SourcePostgres:
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		pgProvider, err := dictionary.NewPostgresProvider(pg, cfg.Dictionary.Table)
		if err != nil {
			slog.Error("invalid dictionary table", "error", err)
			os.Exit(1)
		}
		provider = pgProvider
		// The index is already in memory, so a lost database only blocks reloads.
		checker.Register("postgres", health.Ping(pg.Ping, health.StatusDegraded))
	default:
		provider = dictionary.FileProvider{Path: cfg.Dictionary.Path}
	}

	words, err := dictionary.LoadWithRetry(ctx, provider, cfg.Dictionary.LoadAttempts)
	if err != nil {
		slog.Error("failed to load dictionary", "source", provider.Name(), "error", err)
		os.Exit(1)
	}
	engine := anagram.New(words, anagram.Options{
		Limits: search.Limits{
			MaxPartitions: cfg.Search.MaxPartitions,
			MaxWords:      cfg.Search.MaxWords,
			Workers:       cfg.Search.Workers,
		},
		MaxSentences: cfg.Search.MaxSentences,
	})
	holder := anagram.NewHolder(engine)
	recordDictionary(m, engine)

	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		e := holder.Load()
		if e == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "not loaded"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d words, version %s", e.Stats().Words, e.Version()),
		}
	})

	// Answer cache.
	var answerCache *cache.AnswerCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, answer caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
				FailureThreshold: cfg.Redis.BreakerThreshold,
				ResetTimeout:     cfg.Redis.BreakerCooldown,
			})
			answerCache = cache.New(redisClient, cfg.Redis.CacheTTL, m).WithBreaker(breaker)
			slog.Info("answer cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
			ping := health.Ping(redisClient.Ping, health.StatusDegraded)
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if result := ping(ctx); result.Status != health.StatusUp {
					return result
				}
				if state := breaker.State(); state != resilience.StateClosed {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit " + state.String()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
		}
	}

	// Dictionary reloads.
	reloader := dictionary.NewReloader(provider, holder, cfg.Dictionary.LoadAttempts)
	reloader.OnSwap(func(ctx context.Context, previous, current *anagram.Engine) {
		recordDictionary(m, current)
		if answerCache != nil {
			if _, err := answerCache.Invalidate(ctx); err != nil {
				slog.Warn("failed to invalidate answer cache after reload", "error", err)
			}
		}
	})

	// Query analytics. Without brokers the aggregator is fed in-process.
	aggregator := analytics.NewAggregator()
	var tracker handler.Tracker = aggregator

	if cfg.Kafka.Enabled() {
		hostname, _ := os.Hostname()
		reloadConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DictionaryUpdates, "reload-"+hostname,
			func(ctx context.Context, key, value []byte) error {
				err := reloader.HandleMessage(ctx, key, value)
				status := "ok"
				if err != nil {
					status = "error"
				}
				m.DictionaryReloads.WithLabelValues(status).Inc()
				return err
			})
		go func() {
			if err := reloadConsumer.Run(ctx); err != nil {
				slog.Error("dictionary update consumer error", "error", err)
			}
		}()

		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 10000, 100, 2*time.Second)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector

		eventConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, "analytics", aggregator.HandleMessage)
		go func() {
			if err := eventConsumer.Run(ctx); err != nil {
				slog.Error("query event consumer error", "error", err)
			}
		}()
		slog.Info("kafka enabled",
			"brokers", cfg.Kafka.Brokers,
			"dictionary_updates", cfg.Kafka.Topics.DictionaryUpdates,
			"query_events", cfg.Kafka.Topics.QueryEvents,
		)
	}

	h := handler.New(holder, cfg.Search, handler.Deps{
		Cache:    answerCache,
		Tracker:  tracker,
		Metrics:  m,
		Reloader: reloader,
	})
	analyticsH := analytics.NewHandler(aggregator)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
	go limiter.Run(ctx, 5*time.Minute)
	clients, err := middleware.NewClientResolver(cfg.Server.TrustedProxies)
	if err != nil {
		slog.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	// Metrics sits directly on the mux so it sees the matched route pattern.
	server := newServer(cfg.Server, middleware.Metrics(m)(mux),
		middleware.RateLimit(limiter, "/api/v1/anagrams/", clients, m),
		middleware.RequestID,
	)

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("anagram service listening", "addr", server.Addr)
	if err := serve(ctx, server, ln, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("anagram service stopped")
}

// newServer bounds handler work by RequestTimeout, then applies outer
// middleware, the last one outermost. The write deadline is left longer than
// the request deadline so a timed-out query still gets its error response.
func newServer(cfg config.ServerConfig, inner http.Handler, outer ...func(http.Handler) http.Handler) *http.Server {
	h := middleware.Timeout(cfg.RequestTimeout)(inner)
	for _, mw := range outer {
		h = mw(h)
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// serve runs server on ln until ctx is done, then shuts it down. It returns
// only after in-flight handlers have finished or timeout has passed, so the
// caller's deferred closes never race a running handler.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

func recordDictionary(m *metrics.Metrics, e *anagram.Engine) {
	stats := e.Stats()
	m.DictionaryWords.Set(float64(stats.Words))
	m.DictionaryProfiles.Set(float64(stats.Profiles))
}
