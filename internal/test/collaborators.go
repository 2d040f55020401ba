package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// RaterStub returns fixed composite ratings per donor.
type RaterStub struct {
	Ratings map[int64]float64
	Err     error
	mu      sync.Mutex
	Calls   []int64
}

// CompositeDonorRating returns the configured rating, 0 for unknown donors.
func (s *RaterStub) CompositeDonorRating(ctx context.Context, donorID int64) (float64, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, donorID)
	s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Ratings[donorID], nil
}

// InterpreterStub turns notes into configured interpretations.
type InterpreterStub struct {
	InterpretFn func(context.Context, string, time.Time) (*model.NoteInterpretation, error)
	Result      *model.NoteInterpretation
	Err         error
}

// Interpret delegates to the override or returns the configured result.
func (s InterpreterStub) Interpret(ctx context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error) {
	if s.InterpretFn != nil {
		return s.InterpretFn(ctx, note, postedAt)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return &model.NoteInterpretation{Description: note}, nil
}

// RatingCacheStub is a map backed composite rating cache.
type RatingCacheStub struct {
	mu          sync.Mutex
	values      map[int64]float64
	GetErr      error
	SetErr      error
	Invalidated []int64
}

// NewRatingCacheStub constructs an empty RatingCacheStub.
func NewRatingCacheStub() *RatingCacheStub {
	return &RatingCacheStub{values: make(map[int64]float64)}
}

// Get returns a cached composite rating.
func (c *RatingCacheStub) Get(ctx context.Context, donorID int64) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return 0, false, c.GetErr
	}
	v, ok := c.values[donorID]
	return v, ok, nil
}

// Set stores a composite rating.
func (c *RatingCacheStub) Set(ctx context.Context, donorID int64, composite float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.values[donorID] = composite
	return nil
}

// Invalidate drops a cached rating.
func (c *RatingCacheStub) Invalidate(ctx context.Context, donorID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, donorID)
	c.Invalidated = append(c.Invalidated, donorID)
	return nil
}
