package logger

import "go.uber.org/fx"

// Module provides the service logger at the configured level.
var Module = fx.Provide(New)
