package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const (
	pickupLat = 28.6139
	pickupLng = 77.2090
)

// seedCity places organizations 1 and 2 near the pickup point and 3 in another city.
func seedCity(f *fixture) {
	f.store.SeedLocation(1, 28.6200, 77.2100)
	f.store.SeedLocation(2, 28.6500, 77.2300)
	f.store.SeedLocation(3, 19.0760, 72.8777)
}

func TestAcceptDonationByEligibleOrganization(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, 2*time.Hour)

	result, err := f.ledger.Accept(context.Background(), d.ID, 1)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if result.AlreadyAccepted {
		t.Fatal("expected fresh acceptance")
	}
	got := f.store.Donation(d.ID)
	if got.Status != model.DonationStatusAccepted || got.Remaining != 40 || !got.ClaimedBy(1) {
		t.Fatalf("unexpected donation after accept: %+v", got)
	}
	if types := eventTypes(result.Events); len(types) != 1 || types[0] != model.EventDonationAccepted {
		t.Fatalf("expected accepted event, got %v", types)
	}
}

func TestAcceptDonationIsIdempotentForSameOrganization(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, 2*time.Hour)

	if _, err := f.ledger.Accept(context.Background(), d.ID, 1); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	result, err := f.ledger.Accept(context.Background(), d.ID, 1)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if !result.AlreadyAccepted || len(result.Events) != 0 {
		t.Fatalf("expected silent no-op, got %+v", result)
	}
}

func TestAcceptDonationRejectsIneligibleAndSecondClaimant(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, 2*time.Hour)

	if _, err := f.ledger.Accept(context.Background(), d.ID, 3); !errors.Is(err, domainErrors.ErrNotEligible) {
		t.Fatalf("expected not eligible for distant organization, got %v", err)
	}
	if got := f.store.Donation(d.ID).Status; got != model.DonationStatusPending {
		t.Fatalf("expected donation to stay pending, got %s", got)
	}

	if _, err := f.ledger.Accept(context.Background(), d.ID, 1); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.ledger.Accept(context.Background(), d.ID, 2); !errors.Is(err, domainErrors.ErrAlreadyClaimed) {
		t.Fatalf("expected already claimed, got %v", err)
	}
	if got := f.store.Donation(d.ID); !got.ClaimedBy(1) {
		t.Fatalf("expected first claimant to keep the donation, got %+v", got.OrganizationID)
	}
}

func TestAcceptDonationConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, 2*time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, org := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, org int64) {
			defer wg.Done()
			_, errs[i] = f.ledger.Accept(context.Background(), d.ID, org)
		}(i, org)
	}
	wg.Wait()

	wins, claimed := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainErrors.ErrAlreadyClaimed):
			claimed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || claimed != 1 {
		t.Fatalf("expected one winner and one already claimed, got %d/%d", wins, claimed)
	}
}

func TestAcceptExpiredDonationCommitsExpiry(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, time.Hour)
	f.clock.Advance(2 * time.Hour)

	result, err := f.ledger.Accept(context.Background(), d.ID, 1)
	if !errors.Is(err, domainErrors.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if result == nil || countEvents(result.Events, model.EventDonationExpired) != 1 {
		t.Fatalf("expected result carrying the expiry event, got %+v", result)
	}
	if got := f.store.Donation(d.ID); got.Status != model.DonationStatusExpired || got.Remaining != 0 {
		t.Fatalf("expected persisted expiry, got %+v", got)
	}

	result, err = f.ledger.Accept(context.Background(), d.ID, 1)
	if !errors.Is(err, domainErrors.ErrUnavailable) {
		t.Fatalf("expected unavailable on repeat, got %v", err)
	}
	if len(result.Events) != 0 {
		t.Fatalf("expiry must be reported once, got %v", eventTypes(result.Events))
	}
}

func TestAcceptRequiresLocatedOrganization(t *testing.T) {
	f := newFixture(t)
	f.store.SeedLocation(1, 28.62, 77.21)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, time.Hour)

	if _, err := f.ledger.Accept(context.Background(), d.ID, 8); !errors.Is(err, domainErrors.ErrNotEligible) {
		t.Fatalf("expected organization without location to be ineligible, got %v", err)
	}
	if _, err := f.ledger.Accept(context.Background(), 999, 1); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectDonation(t *testing.T) {
	f := newFixture(t)
	seedCity(f)
	d := f.pendingDonation(5, "rice", 40, pickupLat, pickupLng, 2*time.Hour)

	if _, err := f.ledger.Reject(context.Background(), d.ID, 3); !errors.Is(err, domainErrors.ErrNotEligible) {
		t.Fatalf("expected not eligible, got %v", err)
	}
	result, err := f.ledger.Reject(context.Background(), d.ID, 2)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if countEvents(result.Events, model.EventDonationRejected) != 1 {
		t.Fatalf("expected rejected event, got %v", eventTypes(result.Events))
	}
	if got := f.store.Donation(d.ID); got.Status != model.DonationStatusRejected || got.Remaining != 0 {
		t.Fatalf("unexpected donation after reject: %+v", got)
	}

	if _, err := f.ledger.Reject(context.Background(), d.ID, 2); !errors.Is(err, domainErrors.ErrUnavailable) {
		t.Fatalf("expected unavailable for rejected donation, got %v", err)
	}
	if _, err := f.ledger.Accept(context.Background(), d.ID, 1); !errors.Is(err, domainErrors.ErrUnavailable) {
		t.Fatalf("expected rejected donation to be unavailable for accept, got %v", err)
	}
}

func TestRejectAcceptedDonationIsInvalid(t *testing.T) {
	f := newFixture(t)
	d := f.acceptedDonation(5, 1, "rice", 10, time.Hour)

	if _, err := f.ledger.Reject(context.Background(), d.ID, 1); !errors.Is(err, domainErrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
}

func TestConsume(t *testing.T) {
	f := newFixture(t)
	d := f.acceptedDonation(5, 1, "rice", 10, time.Hour)

	if _, err := f.ledger.Consume(context.Background(), d.ID, 4); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got := f.store.Donation(d.ID); got.Remaining != 6 || got.Status != model.DonationStatusPartial {
		t.Fatalf("expected partial with 6 left, got %+v", got)
	}
	if _, err := f.ledger.Consume(context.Background(), d.ID, 7); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if _, err := f.ledger.Consume(context.Background(), d.ID, 0); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.ledger.Consume(context.Background(), d.ID, 6); err != nil {
		t.Fatalf("consume rest: %v", err)
	}
	if got := f.store.Donation(d.ID); got.Remaining != 0 || got.Status != model.DonationStatusDelivered {
		t.Fatalf("expected delivered with nothing left, got %+v", got)
	}
	if _, err := f.ledger.Consume(context.Background(), d.ID, 1); !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on empty donation, got %v", err)
	}
}

func TestConsumeStateGuards(t *testing.T) {
	cases := []struct {
		status model.DonationStatus
		want   error
	}{
		{model.DonationStatusPending, domainErrors.ErrInvalidStateTransition},
		{model.DonationStatusRejected, domainErrors.ErrUnavailable},
		{model.DonationStatusExpired, domainErrors.ErrUnavailable},
	}
	for _, tc := range cases {
		d := &model.Donation{ID: 1, Status: tc.status, Remaining: 5, ExpiresAt: baseTime.Add(time.Hour)}
		if err := consume(d, 1, baseTime); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestConsumeExpiresOverdueDonation(t *testing.T) {
	f := newFixture(t)
	d := f.acceptedDonation(5, 1, "rice", 10, time.Hour)
	f.clock.Advance(90 * time.Minute)

	if _, err := f.ledger.Consume(context.Background(), d.ID, 1); !errors.Is(err, domainErrors.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if got := f.store.Donation(d.ID); got.Remaining != 10 {
		t.Fatalf("expected failed consume to roll back, got %+v", got)
	}
}

func TestExpireIfDue(t *testing.T) {
	d := &model.Donation{Status: model.DonationStatusPartial, Remaining: 3, ExpiresAt: baseTime}
	if expireIfDue(d, baseTime) {
		t.Fatal("donation must not expire at its exact expiry instant")
	}
	if !expireIfDue(d, baseTime.Add(time.Second)) {
		t.Fatal("expected overdue donation to expire")
	}
	if d.Status != model.DonationStatusExpired || d.Remaining != 0 {
		t.Fatalf("unexpected state: %+v", d)
	}
	if expireIfDue(d, baseTime.Add(time.Hour)) {
		t.Fatal("expired donation must not expire twice")
	}

	delivered := &model.Donation{Status: model.DonationStatusDelivered, ExpiresAt: baseTime}
	if expireIfDue(delivered, baseTime.Add(time.Hour)) {
		t.Fatal("delivered donation must not expire")
	}
}

func TestTouchAppliesLazyExpiry(t *testing.T) {
	f := newFixture(t)
	d := f.acceptedDonation(5, 1, "rice", 10, time.Hour)

	result, err := f.ledger.Touch(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if result.Donation.Status != model.DonationStatusAccepted || len(result.Events) != 0 {
		t.Fatalf("expected untouched fresh donation, got %+v", result)
	}

	f.clock.Advance(2 * time.Hour)
	result, err = f.ledger.Touch(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if result.Donation.Status != model.DonationStatusExpired || countEvents(result.Events, model.EventDonationExpired) != 1 {
		t.Fatalf("expected expiry on read, got %+v", result)
	}
}

func TestHoldings(t *testing.T) {
	f := newFixture(t)
	fresh := f.acceptedDonation(5, 1, "rice", 10, 3*time.Hour)
	stale := f.acceptedDonation(5, 1, "dal", 10, time.Hour)
	f.acceptedDonation(5, 2, "rice", 10, 3*time.Hour)
	f.clock.Advance(2 * time.Hour)

	held, events, err := f.ledger.Holdings(context.Background(), 1)
	if err != nil {
		t.Fatalf("holdings: %v", err)
	}
	if len(held) != 1 || held[0].ID != fresh.ID {
		t.Fatalf("expected only fresh stock, got %+v", held)
	}
	if len(events) != 1 || events[0].Donation.ID != stale.ID {
		t.Fatalf("expected expiry event for stale stock, got %+v", events)
	}
	if got := f.store.Donation(stale.ID).Status; got != model.DonationStatusExpired {
		t.Fatalf("expected stale stock expired, got %s", got)
	}
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.pendingDonation(5, "rice", 10, pickupLat, pickupLng, time.Hour)
	}
	accepted := f.acceptedDonation(6, 1, "rice", 10, time.Hour)
	keep := f.acceptedDonation(6, 1, "rice", 10, 5*time.Hour)
	f.clock.Advance(2 * time.Hour)

	events, err := f.ledger.SweepExpired(context.Background(), 2)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected batch limit of 2, got %d", len(events))
	}

	events, err = f.ledger.SweepExpired(context.Background(), 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected remaining 2 expirations, got %d", len(events))
	}
	if got := f.store.Donation(accepted.ID).Status; got != model.DonationStatusExpired {
		t.Fatalf("expected accepted stock to expire, got %s", got)
	}
	if got := f.store.Donation(keep.ID).Status; got != model.DonationStatusAccepted {
		t.Fatalf("expected fresh stock to stay, got %s", got)
	}

	events, err = f.ledger.SweepExpired(context.Background(), 10)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected idle sweep, got %d events err %v", len(events), err)
	}
}
