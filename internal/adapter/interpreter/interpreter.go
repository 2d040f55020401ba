package interpreter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// Remote is the external interpretation service.
type Remote interface {
	Interpret(ctx context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error)
}

// Interpreter asks the remote service first and falls back to the heuristic.
type Interpreter struct {
	remote   Remote
	fallback *Heuristic
	logger   *slog.Logger
}

// New constructs Interpreter. remote may be nil.
func New(remote Remote, fallback *Heuristic, logger *slog.Logger) *Interpreter {
	return &Interpreter{remote: remote, fallback: fallback, logger: logger}
}

// Interpret reads a donor note. Gaps in the remote answer are filled from the heuristic.
func (i *Interpreter) Interpret(ctx context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error) {
	local, err := i.fallback.Interpret(ctx, note, postedAt)
	if err != nil {
		return nil, err
	}
	if i.remote == nil || strings.TrimSpace(note) == "" {
		return local, nil
	}

	remote, err := i.remote.Interpret(ctx, note, postedAt)
	if err != nil {
		i.logger.Warn("remote note interpretation failed, using heuristic", slog.String("error", err.Error()))
		return local, nil
	}
	if strings.TrimSpace(remote.Description) == "" {
		remote.Description = local.Description
	}
	if remote.PreparedAt == nil && remote.ExpiresAt == nil {
		remote.PreparedAt, remote.ExpiresAt = local.PreparedAt, local.ExpiresAt
	}
	return remote, nil
}
