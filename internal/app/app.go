package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/collaborator"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/config"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/event"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/flood"
	handler "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/handler/http"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/ratelimit"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/repository/postgres"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/service"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/tenant"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/database"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/health"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/httpclient"
	pkgkafka "github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/kafka"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/tracing"
)

// minAPIKeyLength is the shortest key the public keyed tier accepts.
const minAPIKeyLength = 32

// App wires together all dependencies and runs the review service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server

	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "review")

	// Initialize Redis client for the stats cache and flood guard.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Tracing is opt-in.
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "review-service",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   1.0,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Collaborator clients degrade gracefully; a breaker keeps a dead
	// upstream from slowing down submissions.
	baseClient := httpclient.New(httpclient.DefaultConfig())

	var verifier collaborator.PurchaseVerifier = collaborator.NoopVerifier{}
	if cfg.OrderServiceURL != "" {
		verifier = collaborator.NewOrderServiceVerifier(
			httpclient.NewBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("order-service"), logger),
			cfg.OrderServiceURL, logger,
		)
	}

	var classifier collaborator.SentimentClassifier = collaborator.NoopClassifier{}
	if cfg.SentimentServiceURL != "" {
		classifier = collaborator.NewSentimentServiceClassifier(
			httpclient.NewBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("sentiment-service"), logger),
			cfg.SentimentServiceURL, logger,
		)
	}

	// Build the dependency graph.
	reviewRepo := postgres.NewReviewRepository(pool)
	voteRepo := postgres.NewVoteRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	targetRepo := postgres.NewTargetRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	floodGuard := flood.NewGuard(redisClient, cfg.FloodLimit, logger)
	statsCache := service.NewRedisStatsCache(redisClient)
	tenantProvider := tenant.NewStaticProvider(cfg.Tenant)

	statsService := service.NewStatsService(statsRepo, statsCache, logger)
	moderationService := service.NewModerationService(
		reviewRepo, reportRepo, targetRepo, tenantProvider,
		floodGuard, verifier, classifier, statsService, eventProducer, logger,
	)
	voteService := service.NewVoteService(voteRepo, eventProducer, logger)
	queryService := service.NewQueryService(reviewRepo, statsRepo, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, logger)
	exportService := service.NewExportService(analyticsRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// Public API rate limiter.
	limiter := ratelimit.New(ratelimit.Config{
		KeyedPerMinute:     cfg.PublicKeyedPerMinute,
		AnonymousPerMinute: cfg.PublicAnonPerMinute,
	}, ratelimit.MinLengthKeyValidator(minAPIKeyLength), logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Moderation:  moderationService,
		Votes:       voteService,
		Query:       queryService,
		Stats:       statsService,
		Analytics:   analyticsService,
		Export:      exportService,
		Health:      healthHandler,
		RateLimiter: limiter,
		JWTSecret:   cfg.JWTSecret,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
