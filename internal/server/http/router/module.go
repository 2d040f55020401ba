package router

import "go.uber.org/fx"

// Module provides the gin engine serving the API, health and metrics routes.
var Module = fx.Provide(Setup)
