package redis

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/usecase"
)

// Module provides the composite rating cache. Without REDIS_URL ratings are not cached.
var Module = fx.Provide(newRatingCache)

type cacheParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

func newRatingCache(p cacheParams) (usecase.RatingCache, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Info("rating cache disabled")
		return usecase.NopRatingCache{}, nil
	}
	cache, err := New(p.Ctx, p.Config.RedisURL, p.Config.RatingCacheTTL)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})
	return cache, nil
}
