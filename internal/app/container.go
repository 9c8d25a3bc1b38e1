package app

import (
	"context"
	"time"

	"talent-match/internal/config"
	"talent-match/internal/database"
	dbpostgres "talent-match/internal/database/postgres"
	"talent-match/internal/embedding"
	"talent-match/internal/infrastructure/cache"
	"talent-match/internal/notification"
	"talent-match/internal/ratelimit"
	"talent-match/internal/repository"
	"talent-match/internal/usecase"
	"talent-match/internal/ws"

	"go.uber.org/zap"
)

type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub

	Matching   usecase.MatchingUsecase
	Dispatch   usecase.DispatchUsecase
	Stats      usecase.StatsUsecase
	Engagement usecase.EngagementUsecase
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	jobs := repository.NewPostgresJobRepository(db)
	candidates := repository.NewPostgresCandidateRepository(db)
	matches := repository.NewPostgresMatchRepository(db)

	embedder := embedding.NewHTTPProvider(
		cfg.Embedding.APIURL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Timeout,
	)
	deliverer := notification.NewHTTPDeliverer(
		cfg.Delivery.APIURL, cfg.Delivery.APIKey, cfg.Delivery.From, cfg.Delivery.Timeout,
	)
	builder := notification.NewBuilder(cfg.App.BaseURL)

	// The redis limiter reserves budget atomically across instances; when
	// redis is down the store-backed limiter keeps the invariant within a
	// single instance instead of silently dropping the cap.
	var limiter ratelimit.Limiter
	if client := redisCache.Client(); client != nil {
		limiter = ratelimit.NewRedisLimiter(client, cfg.Dispatch.HourlyBudget, time.Hour)
	} else {
		if logger != nil {
			logger.Warn("redis unavailable, using store-backed rate limiter")
		}
		limiter = ratelimit.NewStoreLimiter(matches, cfg.Dispatch.HourlyBudget, time.Hour)
	}

	hub := ws.NewHub(logger)
	ws.SetDefaultHub(hub)
	go hub.Run()

	c := &Container{
		Config: cfg,
		DB:     db,
		Cache:  redisCache,
		Hub:    hub,

		Matching:   usecase.NewMatchingUsecase(jobs, candidates, matches, embedder, cfg.Matching, cfg.Embedding, logger),
		Dispatch:   usecase.NewDispatcher(jobs, candidates, matches, deliverer, builder, limiter, cfg.Matching, cfg.Dispatch, logger),
		Stats:      usecase.NewStatsUsecase(matches, redisCache, cfg.Matching),
		Engagement: usecase.NewEngagementUsecase(matches, logger),
	}
	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
