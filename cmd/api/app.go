package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-analytics/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics/internal/config"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/workers"
)

type app struct {
	router *gin.Engine
	worker *workers.StreakWorker
	tokens *services.TokenService
	db     *sqlx.DB
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	startTime := time.Now()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.WeekStart()
	if err != nil {
		return nil, err
	}

	a := &app{}

	var (
		habitRepo      domain.HabitRepository
		completionRepo domain.CompletionRepository
		pinger         adapterHTTP.Pinger
	)

	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data will not survive a restart")
		habitRepo = repository.NewInMemoryHabitRepository()
		completionRepo = repository.NewInMemoryCompletionRepository()

	default:
		logger.Info("connecting to database", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))

		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(cfg.DB.MaxConns)
		db.SetMaxIdleConns(cfg.DB.MaxConns)
		db.SetConnMaxLifetime(5 * time.Minute)
		a.db = db

		if err := repository.Migrate(ctx, db); err != nil {
			a.Close()
			return nil, err
		}

		habitRepo = repository.NewPostgresHabitRepository(db)
		completionRepo = repository.NewPostgresCompletionRepository(db)
		pinger = db
	}

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rdb

		store := cache.NewJSONStore(rdb, "habit", cfg.Redis.CacheTTL)
		habitRepo = repository.NewCachedHabitRepository(habitRepo, store, logger)
		logger.Info("redis cache enabled", zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	a.worker = workers.NewStreakWorker(habitRepo, completionRepo, loc, logger)
	a.tokens = services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	habitService := services.NewHabitService(habitRepo)
	completionService := services.NewCompletionService(completionRepo, habitRepo, a.worker, loc, nil)
	metricsService := services.NewMetricsService(habitRepo, completionRepo, analytics.Options{
		Location:       loc,
		WeekStartsOn:   &weekStart,
		HistoryPeriods: cfg.Analytics.HistoryPeriods,
		LookbackDays:   cfg.Analytics.LookbackDays,
	}, nil)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService, logger),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService, loc, logger),
		MetricsHandler:    adapterHTTP.NewMetricsHandler(metricsService, loc, logger),
		Tokens:            a.tokens,
		HTTPMetrics:       middleware.NewHTTPMetrics(),
		DB:                pinger,
		Redis:             a.redis,
		RateLimit:         adapterHTTP.RateLimit{Limit: cfg.Rate.Limit, Window: cfg.Rate.Window},
		Logger:            logger,
		StartTime:         startTime,
	})

	return a, nil
}
