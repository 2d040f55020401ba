package notifier

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/metrics"
)

// Module exposes the notification sender and event dispatcher to the fx graph.
var Module = fx.Provide(
	newSender,
	newDispatcher,
)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) (Sender, error) {
	if p.Config.NotifierURL == "" {
		return NewLogSender(p.Logger), nil
	}
	return NewHTTPSender(p.Config.NotifierURL, p.Logger)
}

type dispatcherParams struct {
	fx.In

	Sender   Sender
	Recorder *metrics.Recorder
	Logger   *slog.Logger
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Sender, p.Recorder, p.Logger)
}
