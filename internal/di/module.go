package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/adapter/interpreter"
	"github.com/polkiloo/foodbridge/internal/adapter/notifier"
	"github.com/polkiloo/foodbridge/internal/app"
	"github.com/polkiloo/foodbridge/internal/clock"
	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/logger"
	"github.com/polkiloo/foodbridge/internal/metrics"
	"github.com/polkiloo/foodbridge/internal/pkg/auth"
	"github.com/polkiloo/foodbridge/internal/server/http/handlers"
	"github.com/polkiloo/foodbridge/internal/server/http/middleware"
	"github.com/polkiloo/foodbridge/internal/server/http/router"
	"github.com/polkiloo/foodbridge/internal/storage/postgres"
	"github.com/polkiloo/foodbridge/internal/storage/redis"
	"github.com/polkiloo/foodbridge/internal/tracking"
	"github.com/polkiloo/foodbridge/internal/usecase"
)

// Module assembles the whole service graph. opts are appended last so callers can replace providers.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		auth.Module,
		metrics.Module,
		postgres.Module,
		redis.Module,
		notifier.Module,
		interpreter.Module,
		tracking.Module,
		usecase.Module,
		fx.Provide(
			func(f *app.FoodBridgeFacade) handlers.FoodBridgeFacade { return f },
			func(h *tracking.Hub) handlers.DeliveryFeed { return h },
			func(s auth.Strategy) middleware.ActorParser { return s },
			func(s *postgres.Storage) router.HealthChecker { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
