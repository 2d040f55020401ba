package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// DonationFacadeStub provides controllable behaviour for donation endpoints.
type DonationFacadeStub struct {
	PostFn        func(context.Context, model.NewDonation) (*model.Donation, error)
	GetFn         func(context.Context, int64) (*model.Donation, error)
	ReviewQueueFn func(context.Context, int64) ([]model.Donation, error)
	AcceptFn      func(context.Context, int64, int64) (*model.Donation, bool, error)
	RejectFn      func(context.Context, int64, int64) (*model.Donation, error)
}

// PostDonation delegates to provided function or echoes a pending donation.
func (s DonationFacadeStub) PostDonation(ctx context.Context, in model.NewDonation) (*model.Donation, error) {
	if s.PostFn != nil {
		return s.PostFn(ctx, in)
	}
	return &model.Donation{
		ID:         1,
		DonorID:    in.DonorID,
		Item:       in.Item,
		Quantity:   in.Quantity,
		PreparedAt: in.PreparedAt,
		ExpiresAt:  in.ExpiresAt,
		PickupLat:  in.PickupLat,
		PickupLng:  in.PickupLng,
		Status:     model.DonationStatusPending,
	}, nil
}

// Donation returns the configured donation.
func (s DonationFacadeStub) Donation(ctx context.Context, id int64) (*model.Donation, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Donation{ID: id, Status: model.DonationStatusPending}, nil
}

// ReviewQueue returns configured queue or an empty one.
func (s DonationFacadeStub) ReviewQueue(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	if s.ReviewQueueFn != nil {
		return s.ReviewQueueFn(ctx, organizationID)
	}
	return nil, nil
}

// AcceptDonation reports a fresh acceptance by default.
func (s DonationFacadeStub) AcceptDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, bool, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, donationID, organizationID)
	}
	org := organizationID
	return &model.Donation{ID: donationID, Status: model.DonationStatusAccepted, OrganizationID: &org}, false, nil
}

// RejectDonation reports a rejected donation by default.
func (s DonationFacadeStub) RejectDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, donationID, organizationID)
	}
	return &model.Donation{ID: donationID, Status: model.DonationStatusRejected}, nil
}

// RatingFacadeStub simulates rating operations.
type RatingFacadeStub struct {
	RateFn  func(context.Context, model.NewRating) (*model.DonorRating, *model.DonorScore, error)
	ScoreFn func(context.Context, int64) (*model.DonorScore, error)
}

// RateDonor stores nothing and returns the rating echoed back.
func (s RatingFacadeStub) RateDonor(ctx context.Context, in model.NewRating) (*model.DonorRating, *model.DonorScore, error) {
	if s.RateFn != nil {
		return s.RateFn(ctx, in)
	}
	rating := &model.DonorRating{ID: 1, DonationID: in.DonationID, RaterID: in.RaterID, RaterRole: in.RaterRole, Stars: in.Stars}
	return rating, &model.DonorScore{Composite: float64(in.Stars)}, nil
}

// DonorRating returns configured score or an unrated donor.
func (s RatingFacadeStub) DonorRating(ctx context.Context, donorID int64) (*model.DonorScore, error) {
	if s.ScoreFn != nil {
		return s.ScoreFn(ctx, donorID)
	}
	return &model.DonorScore{DonorID: donorID}, nil
}

// OrganizationFacadeStub simulates organization side lookups.
type OrganizationFacadeStub struct {
	SetLocationFn func(context.Context, model.OrganizationLocation) (*model.OrganizationLocation, error)
	InventoryFn   func(context.Context, int64) ([]model.Donation, error)
	NearbyFn      func(context.Context, float64, float64, int) ([]model.NearbyOrganization, error)
	SupplierFn    func(context.Context, string) (*model.OrganizationStock, error)
}

// SetLocation echoes the stored location.
func (s OrganizationFacadeStub) SetLocation(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error) {
	if s.SetLocationFn != nil {
		return s.SetLocationFn(ctx, loc)
	}
	return &loc, nil
}

// Inventory returns configured stock.
func (s OrganizationFacadeStub) Inventory(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	if s.InventoryFn != nil {
		return s.InventoryFn(ctx, organizationID)
	}
	return nil, nil
}

// NearbyOrganizations returns configured ranking.
func (s OrganizationFacadeStub) NearbyOrganizations(ctx context.Context, lat, lng float64, limit int) ([]model.NearbyOrganization, error) {
	if s.NearbyFn != nil {
		return s.NearbyFn(ctx, lat, lng, limit)
	}
	return nil, nil
}

// Supplier returns configured supplier.
func (s OrganizationFacadeStub) Supplier(ctx context.Context, item string) (*model.OrganizationStock, error) {
	if s.SupplierFn != nil {
		return s.SupplierFn(ctx, item)
	}
	return &model.OrganizationStock{OrganizationID: 1, Item: item, Remaining: 1}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn  func(context.Context, model.NewOrder) (*model.ReceiverOrder, error)
	GetFn     func(context.Context, int64) (*model.OrderDetails, error)
	ApproveFn func(context.Context, int64, int64) (*model.OrderDetails, error)
	RejectFn  func(context.Context, int64, int64) (*model.ReceiverOrder, error)
}

// CreateOrder echoes a requested order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, in)
	}
	return &model.ReceiverOrder{
		ID:          1,
		ReceiverID:  in.ReceiverID,
		Item:        in.Item,
		Quantity:    in.Quantity,
		DeliveryLat: in.DeliveryLat,
		DeliveryLng: in.DeliveryLng,
		Status:      model.OrderStatusRequested,
	}, nil
}

// Order returns configured details.
func (s OrderFacadeStub) Order(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, orderID)
	}
	return &model.OrderDetails{Order: model.ReceiverOrder{ID: orderID, Status: model.OrderStatusRequested}}, nil
}

// ApproveOrder returns an allocated order by default.
func (s OrderFacadeStub) ApproveOrder(ctx context.Context, orderID, organizationID int64) (*model.OrderDetails, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, orderID, organizationID)
	}
	org := organizationID
	return &model.OrderDetails{Order: model.ReceiverOrder{ID: orderID, OrganizationID: &org, Status: model.OrderStatusAllocated}}, nil
}

// RejectOrder returns a rejected order by default.
func (s OrderFacadeStub) RejectOrder(ctx context.Context, orderID, organizationID int64) (*model.ReceiverOrder, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, orderID, organizationID)
	}
	return &model.ReceiverOrder{ID: orderID, Status: model.OrderStatusRejected}, nil
}

// DeliveryFacadeStub simulates delivery tracking operations.
type DeliveryFacadeStub struct {
	UpdateFn func(context.Context, model.DeliveryUpdate) (*model.Delivery, error)
	GetFn    func(context.Context, int64) (*model.Delivery, error)
}

// UpdateDelivery applies the update to a blank delivery.
func (s DeliveryFacadeStub) UpdateDelivery(ctx context.Context, in model.DeliveryUpdate) (*model.Delivery, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, in)
	}
	return &model.Delivery{ID: in.DeliveryID, OrganizationID: in.OrganizationID, Status: in.Status, LiveLat: in.LiveLat, LiveLng: in.LiveLng}, nil
}

// Delivery returns configured delivery.
func (s DeliveryFacadeStub) Delivery(ctx context.Context, deliveryID int64) (*model.Delivery, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, deliveryID)
	}
	return &model.Delivery{ID: deliveryID, Status: model.DeliveryStatusPickedUp}, nil
}

// FoodBridgeFacadeStub aggregates facade dependencies for HTTP layer tests.
type FoodBridgeFacadeStub struct {
	DonationFacadeStub
	RatingFacadeStub
	OrganizationFacadeStub
	OrderFacadeStub
	DeliveryFacadeStub
}

// SweepFacadeStub mimics the expiry sweeper's view of the application.
type SweepFacadeStub struct {
	Batches    [][]model.Event
	SweepFn    func(context.Context, int) ([]model.Event, error)
	NotifyFn   func(context.Context, model.Event) error
	Notified   []model.Event
	mu         sync.Mutex
	sweepCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *SweepFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SweepFacadeStub) Unlock() { s.mu.Unlock() }

// SweepCalls returns how many sweeps ran.
func (s *SweepFacadeStub) SweepCalls() int { return int(atomic.LoadInt32(&s.sweepCalls)) }

// SweepExpired returns batches from configured queue.
func (s *SweepFacadeStub) SweepExpired(ctx context.Context, limit int) ([]model.Event, error) {
	call := atomic.AddInt32(&s.sweepCalls, 1)
	if s.SweepFn != nil {
		return s.SweepFn(ctx, limit)
	}
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// NotifyEvent records notification requests.
func (s *SweepFacadeStub) NotifyEvent(ctx context.Context, event model.Event) error {
	if s.NotifyFn != nil {
		return s.NotifyFn(ctx, event)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notified = append(s.Notified, event)
	return nil
}

// DispatcherStub records dispatched events.
type DispatcherStub struct {
	DispatchFn func(context.Context, []model.Event) error
	mu         sync.Mutex
	events     []model.Event
}

// Dispatch stores events and returns the configured error.
func (s *DispatcherStub) Dispatch(ctx context.Context, events []model.Event) error {
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
	if s.DispatchFn != nil {
		return s.DispatchFn(ctx, events)
	}
	return nil
}

// Events returns a copy of every dispatched event.
func (s *DispatcherStub) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Event(nil), s.events...)
}

// Types returns dispatched event types in order.
func (s *DispatcherStub) Types() []model.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]model.EventType, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type)
	}
	return types
}

// TrackerStub records delivery publications.
type TrackerStub struct {
	mu        sync.Mutex
	Published []model.Delivery
}

// Publish stores the delivery snapshot.
func (s *TrackerStub) Publish(orderID int64, d model.Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, d)
}
