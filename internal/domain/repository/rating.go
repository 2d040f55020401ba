package repository

import (
	"context"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// RatingRepository stores donor ratings and aggregates them per dimension.
type RatingRepository interface {
	Upsert(ctx context.Context, r model.DonorRating) (*model.DonorRating, error)
	Averages(ctx context.Context, donorID int64) (model.RatingAverages, error)
}
