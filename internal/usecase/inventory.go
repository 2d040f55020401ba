package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

// DonationResult is the outcome of a donation state change together with the events it caused.
type DonationResult struct {
	Donation        *model.Donation
	AlreadyAccepted bool
	Events          []model.Event
}

// InventoryLedger owns donation status and remaining quantity.
// Every mutation runs in a transaction holding the donation row lock.
type InventoryLedger struct {
	tx        repository.Transactor
	donations repository.DonationRepository
	locations repository.LocationRepository
	policy    *EligibilityPolicy
	clock     clock.Clock
}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger(tx repository.Transactor, donations repository.DonationRepository, locations repository.LocationRepository, policy *EligibilityPolicy, clk clock.Clock) *InventoryLedger {
	return &InventoryLedger{tx: tx, donations: donations, locations: locations, policy: policy, clock: clk}
}

// Accept claims a pending donation for an eligible organization.
//
// Accepting a donation the organization already holds is a no-op reported through AlreadyAccepted.
// When the call itself expires the donation the expiry is committed and both the result,
// carrying the expiry event, and ErrUnavailable are returned.
func (l *InventoryLedger) Accept(ctx context.Context, donationID, organizationID int64) (*DonationResult, error) {
	result := &DonationResult{}
	var outcome error

	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := l.lockFresh(ctx, donationID, result)
		if err != nil {
			return err
		}

		switch d.Status {
		case model.DonationStatusExpired, model.DonationStatusRejected:
			outcome = unavailable(d)
			return nil
		case model.DonationStatusAccepted, model.DonationStatusPartial, model.DonationStatusDelivered:
			if d.ClaimedBy(organizationID) {
				result.AlreadyAccepted = true
				return nil
			}
			return fmt.Errorf("%w: donation %d belongs to another organization", domainErrors.ErrAlreadyClaimed, d.ID)
		}

		if err := l.checkEligible(ctx, d, organizationID); err != nil {
			return err
		}

		now := l.clock.Now()
		d.Status = model.DonationStatusAccepted
		d.Remaining = d.Quantity
		d.OrganizationID = &organizationID
		d.UpdatedAt = now
		if err := l.donations.Update(ctx, d); err != nil {
			return err
		}
		result.Events = append(result.Events, donationEvent(model.EventDonationAccepted, now, d))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, outcome
}

// Reject declines a pending donation on behalf of an eligible organization.
// A freshly expired donation is reported the same way Accept does.
func (l *InventoryLedger) Reject(ctx context.Context, donationID, organizationID int64) (*DonationResult, error) {
	result := &DonationResult{}
	var outcome error

	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := l.lockFresh(ctx, donationID, result)
		if err != nil {
			return err
		}

		switch d.Status {
		case model.DonationStatusExpired, model.DonationStatusRejected:
			outcome = unavailable(d)
			return nil
		case model.DonationStatusPending:
		default:
			return fmt.Errorf("%w: donation %d is %s", domainErrors.ErrInvalidStateTransition, d.ID, d.Status)
		}

		if err := l.checkEligible(ctx, d, organizationID); err != nil {
			return err
		}

		now := l.clock.Now()
		d.Status = model.DonationStatusRejected
		d.Remaining = 0
		d.UpdatedAt = now
		if err := l.donations.Update(ctx, d); err != nil {
			return err
		}
		result.Events = append(result.Events, donationEvent(model.EventDonationRejected, now, d))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, outcome
}

// Consume takes quantity servings out of an accepted donation.
func (l *InventoryLedger) Consume(ctx context.Context, donationID int64, quantity int) (*DonationResult, error) {
	result := &DonationResult{}
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := l.lockFresh(ctx, donationID, result)
		if err != nil {
			return err
		}
		if err := consume(d, quantity, l.clock.Now()); err != nil {
			return err
		}
		return l.donations.Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Touch loads a donation and applies any due expiry.
func (l *InventoryLedger) Touch(ctx context.Context, donationID int64) (*DonationResult, error) {
	result := &DonationResult{}
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := l.lockFresh(ctx, donationID, result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Holdings returns unexpired stock held by an organization, expiring stale rows on the way.
func (l *InventoryLedger) Holdings(ctx context.Context, organizationID int64) ([]model.Donation, []model.Event, error) {
	var (
		held   []model.Donation
		events []model.Event
	)
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		held, events = nil, nil
		candidates, err := l.donations.ListByOrganization(ctx, organizationID)
		if err != nil {
			return err
		}
		now := l.clock.Now()
		for _, c := range candidates {
			if !now.After(c.ExpiresAt) {
				held = append(held, c)
				continue
			}
			result := &DonationResult{}
			d, err := l.lockFresh(ctx, c.ID, result)
			if err != nil {
				return err
			}
			events = append(events, result.Events...)
			if d.Open() {
				held = append(held, *d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return held, events, nil
}

// SweepExpired expires up to limit overdue donations that no other transaction holds.
func (l *InventoryLedger) SweepExpired(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		events = nil
		now := l.clock.Now()
		due, err := l.donations.LockExpired(ctx, now, limit)
		if err != nil {
			return err
		}
		for i := range due {
			d := &due[i]
			if !expireIfDue(d, now) {
				continue
			}
			if err := l.donations.Update(ctx, d); err != nil {
				return err
			}
			events = append(events, donationEvent(model.EventDonationExpired, now, d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (l *InventoryLedger) lockFresh(ctx context.Context, donationID int64, result *DonationResult) (*model.Donation, error) {
	d, err := l.donations.GetForUpdate(ctx, donationID)
	if err != nil {
		return nil, err
	}
	result.Donation = d
	now := l.clock.Now()
	if expireIfDue(d, now) {
		if err := l.donations.Update(ctx, d); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, donationEvent(model.EventDonationExpired, now, d))
	}
	return d, nil
}

func (l *InventoryLedger) checkEligible(ctx context.Context, d *model.Donation, organizationID int64) error {
	locations, err := l.locations.List(ctx)
	if err != nil {
		return err
	}
	if !l.policy.IsEligible(d, locations, organizationID) {
		return fmt.Errorf("%w: organization %d is not among the %d nearest to donation %d",
			domainErrors.ErrNotEligible, organizationID, l.policy.Limit(), d.ID)
	}
	return nil
}

// expireIfDue forces an overdue open donation to EXPIRED and reports whether it changed.
func expireIfDue(d *model.Donation, now time.Time) bool {
	if !d.Open() || !now.After(d.ExpiresAt) {
		return false
	}
	d.Status = model.DonationStatusExpired
	d.Remaining = 0
	d.UpdatedAt = now
	return true
}

// consume decrements remaining stock, flipping the donation to PARTIAL or DELIVERED.
func consume(d *model.Donation, quantity int, now time.Time) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	switch d.Status {
	case model.DonationStatusExpired, model.DonationStatusRejected:
		return unavailable(d)
	case model.DonationStatusPending:
		return fmt.Errorf("%w: donation %d is not accepted yet", domainErrors.ErrInvalidStateTransition, d.ID)
	}
	if quantity > d.Remaining {
		return fmt.Errorf("%w: donation %d has %d servings left, %d requested",
			domainErrors.ErrInsufficientStock, d.ID, d.Remaining, quantity)
	}
	d.Remaining -= quantity
	if d.Remaining == 0 {
		d.Status = model.DonationStatusDelivered
	} else {
		d.Status = model.DonationStatusPartial
	}
	d.UpdatedAt = now
	return nil
}

func unavailable(d *model.Donation) error {
	return fmt.Errorf("%w: donation %d is %s", domainErrors.ErrUnavailable, d.ID, strings.ToLower(string(d.Status)))
}
