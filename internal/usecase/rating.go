package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

const (
	minStars = 1
	maxStars = 5
)

// RatingCache materializes composite donor ratings between rating writes.
type RatingCache interface {
	Get(ctx context.Context, donorID int64) (float64, bool, error)
	Set(ctx context.Context, donorID int64, composite float64) error
	Invalidate(ctx context.Context, donorID int64) error
}

// NopRatingCache never stores anything.
type NopRatingCache struct{}

func (NopRatingCache) Get(context.Context, int64) (float64, bool, error) { return 0, false, nil }
func (NopRatingCache) Set(context.Context, int64, float64) error        { return nil }
func (NopRatingCache) Invalidate(context.Context, int64) error          { return nil }

// RatingResult is the outcome of a rating write.
type RatingResult struct {
	Rating *model.DonorRating
	Score  *model.DonorScore
	Events []model.Event
}

// RatingUseCase records donor ratings and derives composite scores from them.
type RatingUseCase struct {
	ratings     repository.RatingRepository
	donations   repository.DonationRepository
	allocations repository.AllocationRepository
	cache       RatingCache
	clock       clock.Clock
	logger      *slog.Logger

	// writes counts rating writes seen by this process; a cache fill that overlaps one is dropped.
	writes atomic.Uint64
}

// NewRatingUseCase constructs RatingUseCase. A nil cache disables caching.
func NewRatingUseCase(ratings repository.RatingRepository, donations repository.DonationRepository, allocations repository.AllocationRepository, cache RatingCache, clk clock.Clock, logger *slog.Logger) *RatingUseCase {
	if cache == nil {
		cache = NopRatingCache{}
	}
	return &RatingUseCase{ratings: ratings, donations: donations, allocations: allocations, cache: cache, clock: clk, logger: logger}
}

// CompositeRating blends per dimension averages into one score.
// Only dimensions with at least one rating count; a donor without ratings scores 0.
func CompositeRating(avg model.RatingAverages) float64 {
	var parts []decimal.Decimal
	if avg.OrganizationCount > 0 && avg.Organization > 0 {
		parts = append(parts, roundAverage(avg.Organization))
	}
	if avg.ReceiverCount > 0 && avg.Receiver > 0 {
		parts = append(parts, roundAverage(avg.Receiver))
	}
	if len(parts) == 0 {
		return 0
	}
	mean := decimal.Avg(parts[0], parts[1:]...)
	f, _ := mean.Round(3).Float64()
	return f
}

func roundAverage(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Score returns rounded averages and the composite rating of a donor.
func (u *RatingUseCase) Score(ctx context.Context, donorID int64) (*model.DonorScore, error) {
	avg, err := u.ratings.Averages(ctx, donorID)
	if err != nil {
		return nil, err
	}
	org, _ := roundAverage(avg.Organization).Float64()
	recv, _ := roundAverage(avg.Receiver).Float64()
	return &model.DonorScore{
		DonorID: donorID,
		Averages: model.RatingAverages{
			Organization:      org,
			OrganizationCount: avg.OrganizationCount,
			Receiver:          recv,
			ReceiverCount:     avg.ReceiverCount,
		},
		Composite: CompositeRating(avg),
	}, nil
}

// CompositeDonorRating returns the composite rating, served from cache when possible.
func (u *RatingUseCase) CompositeDonorRating(ctx context.Context, donorID int64) (float64, error) {
	if v, ok, err := u.cache.Get(ctx, donorID); err != nil {
		u.logger.Warn("rating cache read failed", slog.Int64("donor_id", donorID), slog.String("error", err.Error()))
	} else if ok {
		return v, nil
	}

	seen := u.writes.Load()
	score, err := u.Score(ctx, donorID)
	if err != nil {
		return 0, err
	}
	u.fillCache(ctx, donorID, score.Composite, seen)
	return score.Composite, nil
}

// fillCache stores a composite computed after seen rating writes.
// A value overlapped by a rating write in this process never stays cached.
func (u *RatingUseCase) fillCache(ctx context.Context, donorID int64, composite float64, seen uint64) {
	if u.writes.Load() != seen {
		return
	}
	if err := u.cache.Set(ctx, donorID, composite); err != nil {
		u.logger.Warn("rating cache write failed", slog.Int64("donor_id", donorID), slog.String("error", err.Error()))
		return
	}
	if u.writes.Load() != seen {
		u.invalidate(ctx, donorID)
	}
}

func (u *RatingUseCase) invalidate(ctx context.Context, donorID int64) {
	if err := u.cache.Invalidate(ctx, donorID); err != nil {
		u.logger.Warn("rating cache invalidation failed", slog.Int64("donor_id", donorID), slog.String("error", err.Error()))
	}
}

// RateDonor stores a rating for the donor of a donation.
// Organizations rate donations they accepted; receivers rate donations delivered to them.
func (u *RatingUseCase) RateDonor(ctx context.Context, in model.NewRating) (*RatingResult, error) {
	if in.Stars < minStars || in.Stars > maxStars {
		return nil, fmt.Errorf("%w: stars must be between %d and %d", domainErrors.ErrValidation, minStars, maxStars)
	}

	d, err := u.donations.Get(ctx, in.DonationID)
	if err != nil {
		return nil, err
	}

	switch in.RaterRole {
	case model.RaterRoleOrganization:
		if !d.ClaimedBy(in.RaterID) {
			return nil, fmt.Errorf("%w: organization %d did not accept donation %d", domainErrors.ErrNotEligible, in.RaterID, d.ID)
		}
	case model.RaterRoleReceiver:
		ok, err := u.allocations.DeliveredToReceiver(ctx, d.ID, in.RaterID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: donation %d was not delivered to receiver %d", domainErrors.ErrNotEligible, d.ID, in.RaterID)
		}
	default:
		return nil, fmt.Errorf("%w: unknown rater role %q", domainErrors.ErrValidation, in.RaterRole)
	}

	rating, err := u.ratings.Upsert(ctx, model.DonorRating{
		DonationID: d.ID,
		DonorID:    d.DonorID,
		RaterID:    in.RaterID,
		RaterRole:  in.RaterRole,
		Stars:      in.Stars,
		Comment:    in.Comment,
		CreatedAt:  u.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	u.writes.Add(1)
	u.invalidate(ctx, d.DonorID)

	score, err := u.Score(ctx, d.DonorID)
	if err != nil {
		return nil, err
	}

	event := newEvent(model.EventDonorRated, rating.CreatedAt)
	snapshot := *rating
	event.Rating = &snapshot
	return &RatingResult{Rating: rating, Score: score, Events: []model.Event{event}}, nil
}
