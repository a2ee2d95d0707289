package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/analytics"
	platformcfg "github.com/example/poetry-platform/internal/platform/config"
	"github.com/example/poetry-platform/internal/platform/db"
	"github.com/example/poetry-platform/internal/platform/httpserver"
	"github.com/example/poetry-platform/internal/platform/logging"
	"github.com/example/poetry-platform/internal/platform/natsconn"
	"github.com/example/poetry-platform/internal/platform/run"
	"github.com/example/poetry-platform/services/poetry/internal/cache"
	"github.com/example/poetry-platform/services/poetry/internal/config"
	"github.com/example/poetry-platform/services/poetry/internal/gemini"
	"github.com/example/poetry-platform/services/poetry/internal/handlers"
	"github.com/example/poetry-platform/services/poetry/internal/recommend"
	"github.com/example/poetry-platform/services/poetry/internal/store"
)

func main() {
	app, err := platformcfg.Load()
	if err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(app.LogLevel, app.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, closeStore := initStore(cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	// NATS is optional: analytics become no-ops and the memory cache loses
	// cross-instance invalidation.
	var nc *nats.Conn
	var js nats.JetStreamContext
	if cfg.NATSURL != "" {
		nc, err = natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: app.ServiceName})
		if err != nil {
			log.Warn("nats unavailable, analytics disabled", zap.Error(err))
			nc = nil
		} else {
			defer nc.Close()
			if js, err = nc.JetStream(); err != nil {
				log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
				js = nil
			} else if err := natsconn.EnsureStream(js, analytics.StreamName, "analytics.>"); err != nil {
				log.Warn("ensure analytics stream", zap.Error(err))
			}
		}
	}
	pub := analytics.New(js, log)

	resolver := recommend.NewResolver(st, initGenerator(cfg, nc, log),
		recommend.WithLogger(log),
		recommend.WithMaxAttempts(cfg.AIMaxAttempts))

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		AllowedOrigins: app.HTTP.CORSAllowedOrigins,
		Logger:         log,
		ReadyFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return st.Ping(ctx)
		},
	})
	handlers.Mount(r, handlers.Deps{
		Store:     st,
		Resolver:  resolver,
		Publisher: pub,
		Log:       log,
		AILimit:   httpserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware,
	})

	srv := httpserver.New(httpserver.Options{
		Addr:         app.HTTP.Addr,
		ServiceName:  app.ServiceName,
		Router:       r,
		WriteTimeout: app.HTTP.WriteTimeout,
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			runner.Graceful(app.ShutdownTimeout, srv.Shutdown)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	_ = log.Sync()
	run.Exit(code)
}

// initStore selects the Store backend. Config guarantees DATABASE_URL outside
// development; in development a missing or unreachable database falls back
// to the seeded in-memory store.
func initStore(cfg config.Config, log *zap.Logger) (store.Store, func()) {
	isDev := cfg.Env == "development"
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using seeded in-memory store (development only)")
		return store.NewSeededInMemoryStore(), nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		if !isDev {
			log.Error("postgres is required but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to seeded in-memory store", zap.Error(err))
		return store.NewSeededInMemoryStore(), nil
	}

	log.Info("poetry store: postgres")
	return store.NewPostgresStore(pool), pool.Close
}

// initGenerator returns nil when no key is configured so the resolver reports
// AI_UNAVAILABLE without touching the network.
func initGenerator(cfg config.Config, nc *nats.Conn, log *zap.Logger) recommend.Generator {
	if !cfg.AIEnabled() {
		log.Warn("GEMINI_API_KEY not set, ai recommendations disabled")
		return nil
	}

	cb := gemini.NewBreaker(gemini.BreakerConfig{
		MaxRequests:      cfg.CBMaxRequests,
		Interval:         cfg.CBInterval,
		Timeout:          cfg.CBTimeout,
		FailureThreshold: cfg.CBFailureThreshold,
	}, log)
	client, err := gemini.New(gemini.ClientConfig{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Timeout:  cfg.GeminiTimeout,
		ProxyURL: cfg.GeminiProxyURL,
	}, gemini.WithCircuitBreaker(cb), gemini.WithLogger(log))
	if err != nil {
		log.Error("gemini client", zap.Error(err))
		run.Exit(1)
	}

	var cacheStore cache.Store
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.RecommendCacheTTL)
		if err != nil {
			log.Error("redis", zap.Error(err))
			run.Exit(1)
		}
		cacheStore = rc
		log.Info("ai cache: redis")
	} else {
		mc, err := cache.NewMemoryCache(cfg.RecommendCacheTTL, nc, cache.InvalidateSubject)
		if err != nil {
			log.Warn("cache invalidation subscription failed", zap.Error(err))
			mc, _ = cache.NewMemoryCache(cfg.RecommendCacheTTL, nil, "")
		}
		cacheStore = mc
		log.Info("ai cache: memory")
	}
	return cache.NewGenerator(client, cacheStore, log)
}
