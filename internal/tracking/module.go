package tracking

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the tracking hub and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(NewHub),
	fx.Invoke(func(lc fx.Lifecycle, hub *Hub) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				hub.Close()
				return nil
			},
		})
	}),
)
