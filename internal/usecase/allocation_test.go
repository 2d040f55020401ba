package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const orgID int64 = 10

func TestAllocateSplitsByRatingThenExpiry(t *testing.T) {
	f := newFixture(t)
	f.rater.Ratings[1] = 4.5
	f.rater.Ratings[2] = 3.0
	a := f.acceptedDonation(1, orgID, "rice", 100, 2*time.Hour)
	b := f.acceptedDonation(2, orgID, "rice", 50, time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 120)

	result, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("allocate returned error: %v", err)
	}
	if result.Replayed {
		t.Fatal("first allocation must not be a replay")
	}
	if result.Servings() != 120 {
		t.Fatalf("expected 120 servings allocated, got %d", result.Servings())
	}
	if len(result.Allocations) != 2 {
		t.Fatalf("expected two allocations, got %+v", result.Allocations)
	}
	if result.Allocations[0].DonationID != a.ID || result.Allocations[0].Quantity != 100 {
		t.Fatalf("expected 100 from higher rated donor first, got %+v", result.Allocations[0])
	}
	if result.Allocations[1].DonationID != b.ID || result.Allocations[1].Quantity != 20 {
		t.Fatalf("expected remaining 20 from second donor, got %+v", result.Allocations[1])
	}

	gotA, gotB := f.store.Donation(a.ID), f.store.Donation(b.ID)
	if gotA.Remaining != 0 || gotA.Status != model.DonationStatusDelivered {
		t.Fatalf("unexpected donation A state: %d %s", gotA.Remaining, gotA.Status)
	}
	if gotB.Remaining != 30 || gotB.Status != model.DonationStatusPartial {
		t.Fatalf("unexpected donation B state: %d %s", gotB.Remaining, gotB.Status)
	}
	if got := f.store.Order(order.ID).Status; got != model.OrderStatusAllocated {
		t.Fatalf("expected order ALLOCATED, got %s", got)
	}
	delivery, ok := f.store.DeliveryOf(order.ID)
	if !ok || delivery.Status != model.DeliveryStatusPickedUp || delivery.OrganizationID != orgID {
		t.Fatalf("expected picked up delivery for the organization, got %+v", delivery)
	}
	if result.Delivery == nil || result.Delivery.ID != delivery.ID {
		t.Fatalf("expected result to carry the delivery, got %+v", result.Delivery)
	}
	if n := countEvents(result.Events, model.EventDonorAllocated); n != 2 {
		t.Fatalf("expected two donor allocated events, got %d", n)
	}
	if n := countEvents(result.Events, model.EventOrderAllocated); n != 1 {
		t.Fatalf("expected one order allocated event, got %d", n)
	}
}

func TestAllocateInsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.rater.Ratings[1] = 4.5
	f.rater.Ratings[2] = 3.0
	a := f.acceptedDonation(1, orgID, "rice", 100, 2*time.Hour)
	b := f.acceptedDonation(2, orgID, "rice", 50, time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 200)

	result, err := f.engine.Allocate(context.Background(), order.ID)
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected no result on failure, got %+v", result)
	}
	if got := f.store.Donation(a.ID); got.Remaining != 100 || got.Status != model.DonationStatusAccepted {
		t.Fatalf("donation A changed: %+v", got)
	}
	if got := f.store.Donation(b.ID); got.Remaining != 50 || got.Status != model.DonationStatusAccepted {
		t.Fatalf("donation B changed: %+v", got)
	}
	if got := f.store.Order(order.ID).Status; got != model.OrderStatusApproved {
		t.Fatalf("expected order to stay APPROVED, got %s", got)
	}
	if allocs := f.store.AllocationsOf(order.ID); len(allocs) != 0 {
		t.Fatalf("expected no allocation rows, got %+v", allocs)
	}
	if _, ok := f.store.DeliveryOf(order.ID); ok {
		t.Fatal("expected no delivery record")
	}
}

func TestAllocateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.acceptedDonation(1, orgID, "rice", 100, 2*time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 40)

	first, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	second, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("second allocate: %v", err)
	}
	if !second.Replayed {
		t.Fatal("expected replayed result")
	}
	if len(second.Events) != 0 {
		t.Fatalf("replay must not emit events, got %v", eventTypes(second.Events))
	}
	if len(second.Allocations) != len(first.Allocations) || second.Allocations[0].ID != first.Allocations[0].ID {
		t.Fatalf("expected same allocations, got %+v vs %+v", second.Allocations, first.Allocations)
	}
	if got := f.store.Donation(a.ID).Remaining; got != 60 {
		t.Fatalf("expected remaining 60 after single decrement, got %d", got)
	}
	if allocs := f.store.AllocationsOf(order.ID); len(allocs) != 1 {
		t.Fatalf("expected one allocation row, got %d", len(allocs))
	}
}

func TestAllocateEqualRatingsPreferEarliestExpiry(t *testing.T) {
	f := newFixture(t)
	late := f.acceptedDonation(1, orgID, "dal", 30, 3*time.Hour)
	early := f.acceptedDonation(2, orgID, "dal", 30, time.Hour)
	order := f.approvedOrder(77, orgID, "dal", 40)

	result, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if result.Allocations[0].DonationID != early.ID || result.Allocations[0].Quantity != 30 {
		t.Fatalf("expected earliest expiring donation first, got %+v", result.Allocations[0])
	}
	if result.Allocations[1].DonationID != late.ID || result.Allocations[1].Quantity != 10 {
		t.Fatalf("expected remainder from later donation, got %+v", result.Allocations[1])
	}
}

func TestAllocateIgnoresOtherOrganizationsAndItems(t *testing.T) {
	f := newFixture(t)
	f.acceptedDonation(1, 99, "rice", 100, time.Hour)
	f.acceptedDonation(1, orgID, "bread", 100, time.Hour)
	own := f.acceptedDonation(1, orgID, "Rice", 10, time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 10)

	result, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(result.Allocations) != 1 || result.Allocations[0].DonationID != own.ID {
		t.Fatalf("expected allocation only from own matching stock, got %+v", result.Allocations)
	}
}

func TestAllocateSkipsExpiredCandidates(t *testing.T) {
	f := newFixture(t)
	f.rater.Ratings[1] = 5
	stale := f.acceptedDonation(1, orgID, "rice", 100, 30*time.Minute)
	fresh := f.acceptedDonation(2, orgID, "rice", 50, 3*time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 20)
	f.clock.Advance(time.Hour)

	result, err := f.engine.Allocate(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(result.Allocations) != 1 || result.Allocations[0].DonationID != fresh.ID {
		t.Fatalf("expected allocation from unexpired donation only, got %+v", result.Allocations)
	}
	if got := f.store.Donation(stale.ID); got.Status != model.DonationStatusExpired || got.Remaining != 0 {
		t.Fatalf("expected stale donation expired, got %+v", got)
	}
	if n := countEvents(result.Events, model.EventDonationExpired); n != 1 {
		t.Fatalf("expected one expiry event, got %d", n)
	}
}

func TestAllocateRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	a := f.acceptedDonation(1, orgID, "rice", 100, 2*time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 40)
	boom := errors.New("disk full")
	f.store.Fail = map[string]error{"allocations.Create": boom}

	if _, err := f.engine.Allocate(context.Background(), order.ID); !errors.Is(err, boom) {
		t.Fatalf("expected write failure, got %v", err)
	}
	if got := f.store.Donation(a.ID); got.Remaining != 100 || got.Status != model.DonationStatusAccepted {
		t.Fatalf("expected donation untouched after rollback, got %+v", got)
	}
	if got := f.store.Order(order.ID).Status; got != model.OrderStatusApproved {
		t.Fatalf("expected order to remain APPROVED, got %s", got)
	}
	if f.store.Rollbacks != 1 {
		t.Fatalf("expected one rollback, got %d", f.store.Rollbacks)
	}
}

func TestAllocateRequiresApprovedOrder(t *testing.T) {
	f := newFixture(t)
	requested := f.store.SeedOrder(model.ReceiverOrder{ReceiverID: 1, Item: "rice", Quantity: 1, Status: model.OrderStatusRequested})

	if _, err := f.engine.Allocate(context.Background(), requested.ID); !errors.Is(err, domainErrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
	if _, err := f.engine.Allocate(context.Background(), 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAllocatePropagatesRatingFailure(t *testing.T) {
	f := newFixture(t)
	f.acceptedDonation(1, orgID, "rice", 10, time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 5)
	f.rater.Err = errors.New("ratings unavailable")

	if _, err := f.engine.Allocate(context.Background(), order.ID); err == nil {
		t.Fatal("expected rating failure to abort allocation")
	}
	if got := f.store.Order(order.ID).Status; got != model.OrderStatusApproved {
		t.Fatalf("expected order to remain APPROVED, got %s", got)
	}
}

func TestAllocateLooksUpEachDonorOnce(t *testing.T) {
	f := newFixture(t)
	f.acceptedDonation(1, orgID, "rice", 10, time.Hour)
	f.acceptedDonation(1, orgID, "rice", 10, 2*time.Hour)
	order := f.approvedOrder(77, orgID, "rice", 15)

	if _, err := f.engine.Allocate(context.Background(), order.ID); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(f.rater.Calls) != 1 {
		t.Fatalf("expected one rating lookup for a single donor, got %v", f.rater.Calls)
	}
}

func TestPlanAllocation(t *testing.T) {
	mk := func(id int64, remaining int, rating float64, expires time.Duration) candidate {
		return candidate{
			donation: &model.Donation{ID: id, Remaining: remaining, ExpiresAt: baseTime.Add(expires)},
			rating:   rating,
		}
	}

	cases := []struct {
		name      string
		cands     []candidate
		need      int
		wantIDs   []int64
		wantQty   []int
		shortfall int
	}{
		{
			name:    "exact fit from best",
			cands:   []candidate{mk(1, 10, 2, time.Hour), mk(2, 10, 4, time.Hour)},
			need:    10,
			wantIDs: []int64{2},
			wantQty: []int{10},
		},
		{
			name:      "shortfall",
			cands:     []candidate{mk(1, 3, 1, time.Hour)},
			need:      5,
			wantIDs:   []int64{1},
			wantQty:   []int{3},
			shortfall: 2,
		},
		{
			name:    "unrated donors last",
			cands:   []candidate{mk(1, 5, 0, time.Minute), mk(2, 5, 1, 2*time.Hour)},
			need:    7,
			wantIDs: []int64{2, 1},
			wantQty: []int{5, 2},
		},
		{
			name:      "no candidates",
			need:      1,
			shortfall: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, shortfall := planAllocation(tc.cands, tc.need)
			if shortfall != tc.shortfall {
				t.Fatalf("expected shortfall %d, got %d", tc.shortfall, shortfall)
			}
			if len(plan) != len(tc.wantIDs) {
				t.Fatalf("expected %d steps, got %d", len(tc.wantIDs), len(plan))
			}
			for i, step := range plan {
				if step.candidate.donation.ID != tc.wantIDs[i] || step.quantity != tc.wantQty[i] {
					t.Fatalf("step %d: expected %d x%d, got %d x%d", i, tc.wantIDs[i], tc.wantQty[i], step.candidate.donation.ID, step.quantity)
				}
			}
		})
	}
}
