package config

import "go.uber.org/fx"

// Module provides the loaded configuration. A missing DATABASE_URI fails the graph.
var Module = fx.Provide(Load)
