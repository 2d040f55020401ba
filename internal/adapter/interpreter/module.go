package interpreter

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/usecase"
)

// Module exposes the note interpreter to the fx graph.
var Module = fx.Provide(newInterpreter)

type interpreterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newInterpreter(p interpreterParams) (usecase.NoteInterpreter, error) {
	fallback := NewHeuristic(p.Config.NoteTimezone, p.Config.ShelfLife)
	if p.Config.InterpreterURL == "" {
		return New(nil, fallback, p.Logger), nil
	}
	client, err := NewHTTPClient(p.Config.InterpreterURL, p.Logger)
	if err != nil {
		return nil, err
	}
	return New(client, fallback, p.Logger), nil
}
