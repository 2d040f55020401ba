package usecase

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
	"github.com/polkiloo/foodbridge/internal/geo"
)

// NoteInterpreter turns a free-text donor note into structured fields.
type NoteInterpreter interface {
	Interpret(ctx context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error)
}

// DonationUseCase handles donation posting and organization side lookups.
type DonationUseCase struct {
	donations   repository.DonationRepository
	locations   repository.LocationRepository
	policy      *EligibilityPolicy
	interpreter NoteInterpreter
	shelfLife   time.Duration
	clock       clock.Clock
	logger      *slog.Logger
}

// NewDonationUseCase constructs DonationUseCase.
func NewDonationUseCase(donations repository.DonationRepository, locations repository.LocationRepository, policy *EligibilityPolicy, interpreter NoteInterpreter, shelfLife time.Duration, clk clock.Clock, logger *slog.Logger) *DonationUseCase {
	return &DonationUseCase{
		donations:   donations,
		locations:   locations,
		policy:      policy,
		interpreter: interpreter,
		shelfLife:   shelfLife,
		clock:       clk,
		logger:      logger,
	}
}

// Post creates a pending donation. Missing times are taken from the note when it
// mentions them, otherwise preparation is now and expiry follows the shelf life.
func (u *DonationUseCase) Post(ctx context.Context, in model.NewDonation) (*model.Donation, error) {
	now := u.clock.Now()
	if in.Note != "" && (in.PreparedAt.IsZero() || in.ExpiresAt.IsZero() || strings.TrimSpace(in.Item) == "") {
		u.enrich(ctx, &in, now)
	}

	item, err := NormalizeItem(in.Item)
	if err != nil {
		return nil, err
	}
	in.Item = item
	if err := ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := ValidateCoordinates(in.PickupLat, in.PickupLng); err != nil {
		return nil, err
	}

	if in.PreparedAt.IsZero() {
		in.PreparedAt = now
	}
	if in.ExpiresAt.IsZero() {
		in.ExpiresAt = in.PreparedAt.Add(u.shelfLife)
	}
	if !in.ExpiresAt.After(in.PreparedAt) {
		return nil, fmt.Errorf("%w: expiry must be after preparation time", domainErrors.ErrValidation)
	}
	if !in.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: donation is already expired", domainErrors.ErrValidation)
	}

	return u.donations.Create(ctx, in)
}

func (u *DonationUseCase) enrich(ctx context.Context, in *model.NewDonation, now time.Time) {
	if u.interpreter == nil {
		return
	}
	parsed, err := u.interpreter.Interpret(ctx, in.Note, now)
	if err != nil {
		u.logger.Warn("note interpretation failed", slog.Int64("donor_id", in.DonorID), slog.String("error", err.Error()))
		return
	}
	if strings.TrimSpace(in.Item) == "" {
		in.Item = parsed.Description
	}
	if in.PreparedAt.IsZero() && parsed.PreparedAt != nil {
		in.PreparedAt = *parsed.PreparedAt
	}
	if in.ExpiresAt.IsZero() && parsed.ExpiresAt != nil {
		in.ExpiresAt = *parsed.ExpiresAt
	}
}

// ReviewQueue lists unexpired pending donations the organization may accept.
func (u *DonationUseCase) ReviewQueue(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	pending, err := u.donations.ListPending(ctx, u.clock.Now())
	if err != nil {
		return nil, err
	}
	locations, err := u.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	var queue []model.Donation
	for i := range pending {
		if u.policy.IsEligible(&pending[i], locations, organizationID) {
			queue = append(queue, pending[i])
		}
	}
	return queue, nil
}

// SetLocation stores the organization's own location.
func (u *DonationUseCase) SetLocation(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error) {
	if err := ValidateOptionalCoordinates(loc.Lat, loc.Lng); err != nil {
		return nil, err
	}
	loc.Label = strings.TrimSpace(loc.Label)
	loc.UpdatedAt = u.clock.Now()
	return u.locations.Upsert(ctx, loc)
}

// Nearby ranks organizations by distance to a point.
func (u *DonationUseCase) Nearby(ctx context.Context, lat, lng float64, limit int) ([]model.NearbyOrganization, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = u.policy.Limit()
	}
	locations, err := u.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	ranked := geo.Nearest(&geo.Point{Lat: lat, Lng: lng}, locations, locationPoint, limit)
	result := make([]model.NearbyOrganization, 0, len(ranked))
	for _, r := range ranked {
		result = append(result, model.NearbyOrganization{
			OrganizationID: r.Item.OrganizationID,
			Label:          r.Item.Label,
			DistanceKm:     r.DistanceKm,
		})
	}
	return result, nil
}

// Supplier returns the organization holding the most unexpired stock of an item.
// Ties go to the lowest organization id.
func (u *DonationUseCase) Supplier(ctx context.Context, item string) (*model.OrganizationStock, error) {
	item, err := NormalizeItem(item)
	if err != nil {
		return nil, err
	}
	stock, err := u.donations.StockByOrganization(ctx, item, u.clock.Now())
	if err != nil {
		return nil, err
	}
	stock = slices.DeleteFunc(stock, func(s model.OrganizationStock) bool { return s.Remaining <= 0 })
	if len(stock) == 0 {
		return nil, fmt.Errorf("%w: no organization holds %q", domainErrors.ErrNotFound, item)
	}
	best := slices.MinFunc(stock, func(a, b model.OrganizationStock) int {
		if c := cmp.Compare(b.Remaining, a.Remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.OrganizationID, b.OrganizationID)
	})
	return &best, nil
}
