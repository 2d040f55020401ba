package usecase

import (
	"testing"
	"time"

	"github.com/polkiloo/foodbridge/internal/clock"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/logger"
	testhelpers "github.com/polkiloo/foodbridge/internal/test"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *testhelpers.MemoryStore
	clock      *clock.Manual
	rater      *testhelpers.RaterStub
	policy     *EligibilityPolicy
	ledger     *InventoryLedger
	engine     *AllocationEngine
	orders     *OrderUseCase
	deliveries *DeliveryUseCase
	ratings    *RatingUseCase
	donations  *DonationUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	clk := clock.NewManual(baseTime)
	store.Now = clk.Now
	rater := &testhelpers.RaterStub{Ratings: map[int64]float64{}}
	policy := NewEligibilityPolicy(2)
	log := logger.Discard()

	f := &fixture{store: store, clock: clk, rater: rater, policy: policy}
	f.ledger = NewInventoryLedger(store, store.Donations(), store.Locations(), policy, clk)
	f.engine = NewAllocationEngine(store, store.Orders(), store.Donations(), store.Allocations(), store.Deliveries(), rater, clk)
	f.orders = NewOrderUseCase(store, store.Orders(), store.Donations(), store.Allocations(), store.Deliveries(), f.engine, clk)
	f.deliveries = NewDeliveryUseCase(store, store.Deliveries(), store.Orders(), clk)
	f.ratings = NewRatingUseCase(store.Ratings(), store.Donations(), store.Allocations(), nil, clk, log)
	f.donations = NewDonationUseCase(store.Donations(), store.Locations(), policy, testhelpers.InterpreterStub{}, 4*time.Hour, clk, log)
	return f
}

// pendingDonation stores a pending donation picked up at the given point.
func (f *fixture) pendingDonation(donorID int64, item string, qty int, lat, lng float64, expiresIn time.Duration) model.Donation {
	now := f.clock.Now()
	return f.store.SeedDonation(model.Donation{
		DonorID:    donorID,
		Item:       item,
		Quantity:   qty,
		PreparedAt: now,
		ExpiresAt:  now.Add(expiresIn),
		PickupLat:  lat,
		PickupLng:  lng,
		Status:     model.DonationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// acceptedDonation stores a donation already accepted by organizationID.
func (f *fixture) acceptedDonation(donorID, organizationID int64, item string, qty int, expiresIn time.Duration) model.Donation {
	now := f.clock.Now()
	org := organizationID
	return f.store.SeedDonation(model.Donation{
		DonorID:        donorID,
		Item:           item,
		Quantity:       qty,
		Remaining:      qty,
		PreparedAt:     now,
		ExpiresAt:      now.Add(expiresIn),
		Status:         model.DonationStatusAccepted,
		OrganizationID: &org,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// approvedOrder stores an order already claimed by organizationID.
func (f *fixture) approvedOrder(receiverID, organizationID int64, item string, qty int) model.ReceiverOrder {
	now := f.clock.Now()
	org := organizationID
	return f.store.SeedOrder(model.ReceiverOrder{
		ReceiverID:     receiverID,
		OrganizationID: &org,
		Item:           item,
		Quantity:       qty,
		Status:         model.OrderStatusApproved,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func eventTypes(events []model.Event) []model.EventType {
	types := make([]model.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func countEvents(events []model.Event, t model.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}
