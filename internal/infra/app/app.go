package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/infra/config"
	"github.com/Iapetus-11/link-shortener/internal/infra/database"
	kafkainfra "github.com/Iapetus-11/link-shortener/internal/infra/kafka"
	"github.com/Iapetus-11/link-shortener/internal/infra/logger"
	redisinfra "github.com/Iapetus-11/link-shortener/internal/infra/redis"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	postgresrepo "github.com/Iapetus-11/link-shortener/internal/repository/postgres"
	redisrepo "github.com/Iapetus-11/link-shortener/internal/repository/redis"
	"github.com/Iapetus-11/link-shortener/internal/transport/http/middleware"
	"github.com/Iapetus-11/link-shortener/internal/transport/http/routes"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

// Application bundles the wired service and its owned connections.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewHasher(
		argon2Profile(cfg.Argon2.Weak),
		argon2Profile(cfg.Argon2.Strong),
		cfg.Argon2.MaxConcurrent,
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init hasher: %w", err)
	}

	// Redis is optional; without it the login route runs without throttling.
	var (
		redisClient    *redisinfra.Client
		rateLimitStore port.RateLimitStore
		cacheChecker   routes.CacheChecker
	)
	if cfg.Redis.Host != "" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}

		rateLimitWindow := cfg.RateLimit.WindowDuration
		if rateLimitWindow <= 0 {
			rateLimitWindow = time.Minute
		}
		rateLimitStore = redisrepo.NewRateLimitStore(redisClient.Client(), "shortener:rate-limit", rateLimitWindow*2)
		cacheChecker = redisClient
	} else {
		log.Info("redis not configured, login rate limiting disabled")
	}

	// Kafka is optional; without brokers visit events go to the log only.
	var (
		kafkaProducer  *kafkainfra.Producer
		eventPublisher port.EventPublisher
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	repos := postgresrepo.NewRepositories(pool)

	platformService := usecase.NewPlatformService(repos.Platforms, hasher)
	dashboardService, err := usecase.NewDashboardSessionService(repos.LoginTokens, hasher, cfg.Admin.PasswordHash, cfg.Admin.LoginTTL())
	if err != nil {
		closeAll(pool, redisClient, kafkaProducer)
		return nil, fmt.Errorf("init dashboard session service: %w", err)
	}
	linkService := usecase.NewLinkService(repos.Links, repos.Visits, eventPublisher, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		closeAll(pool, redisClient, kafkaProducer)
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	var rateLimiter *middleware.RateLimiter
	if rateLimitStore != nil {
		rateLimiter = middleware.NewRateLimiter(rateLimitStore, log)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       cacheChecker,
		Services: routes.ServiceSet{
			Platforms:         platformService,
			DashboardSessions: dashboardService,
			Links:             linkService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer closeAll(a.pool, a.redis, a.kafka)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting link shortener",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func argon2Profile(s config.Argon2ProfileSettings) security.Argon2Profile {
	return security.Argon2Profile{
		Memory:      s.Memory,
		Iterations:  s.Iterations,
		Parallelism: s.Parallelism,
		SaltLength:  s.SaltLength,
		KeyLength:   s.KeyLength,
	}
}

func closeAll(pool *pgxpool.Pool, redisClient *redisinfra.Client, producer *kafkainfra.Producer) {
	if producer != nil {
		_ = producer.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if pool != nil {
		pool.Close()
	}
}
