package app

import (
	"context"
	"log/slog"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/metrics"
	"github.com/polkiloo/foodbridge/internal/usecase"
)

// EventDispatcher delivers committed domain events to the notification collaborator.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []model.Event) error
}

// DeliveryTracker fans delivery snapshots out to live watchers.
type DeliveryTracker interface {
	Publish(orderID int64, d model.Delivery)
}

const (
	decisionAccept = "accept"
	decisionReject = "reject"
)

// FoodBridgeFacade exposes the use cases to transports and background jobs.
// Every mutating call dispatches the events it committed, even when it also fails.
type FoodBridgeFacade struct {
	donations  *usecase.DonationUseCase
	ledger     *usecase.InventoryLedger
	orders     *usecase.OrderUseCase
	deliveries *usecase.DeliveryUseCase
	ratings    *usecase.RatingUseCase
	events     EventDispatcher
	tracker    DeliveryTracker
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewFoodBridgeFacade builds the facade.
func NewFoodBridgeFacade(
	donations *usecase.DonationUseCase,
	ledger *usecase.InventoryLedger,
	orders *usecase.OrderUseCase,
	deliveries *usecase.DeliveryUseCase,
	ratings *usecase.RatingUseCase,
	events EventDispatcher,
	tracker DeliveryTracker,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *FoodBridgeFacade {
	return &FoodBridgeFacade{
		donations:  donations,
		ledger:     ledger,
		orders:     orders,
		deliveries: deliveries,
		ratings:    ratings,
		events:     events,
		tracker:    tracker,
		metrics:    recorder,
		logger:     logger,
	}
}

func (f *FoodBridgeFacade) dispatch(ctx context.Context, events []model.Event) {
	if len(events) == 0 || f.events == nil {
		return
	}
	if err := f.events.Dispatch(context.WithoutCancel(ctx), events); err != nil {
		f.logger.Warn("event dispatch failed", slog.Int("events", len(events)), slog.String("error", err.Error()))
	}
}

func (f *FoodBridgeFacade) publish(d *model.Delivery) {
	if d == nil || f.tracker == nil {
		return
	}
	f.tracker.Publish(d.OrderID, *d)
}

func (f *FoodBridgeFacade) PostDonation(ctx context.Context, in model.NewDonation) (*model.Donation, error) {
	return f.donations.Post(ctx, in)
}

// Donation returns a donation, expiring it first when it is overdue.
func (f *FoodBridgeFacade) Donation(ctx context.Context, id int64) (*model.Donation, error) {
	result, err := f.ledger.Touch(ctx, id)
	if err != nil {
		return nil, err
	}
	f.dispatch(ctx, result.Events)
	return result.Donation, nil
}

func (f *FoodBridgeFacade) ReviewQueue(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	return f.donations.ReviewQueue(ctx, organizationID)
}

// AcceptDonation reports whether the organization had already accepted the donation.
func (f *FoodBridgeFacade) AcceptDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, bool, error) {
	result, err := f.ledger.Accept(ctx, donationID, organizationID)
	if result != nil {
		f.dispatch(ctx, result.Events)
	}
	if err != nil {
		f.metrics.Decision(decisionAccept, metrics.ResultFailure)
		return nil, false, err
	}
	if result.AlreadyAccepted {
		f.metrics.Decision(decisionAccept, metrics.ResultReplay)
	} else {
		f.metrics.Decision(decisionAccept, metrics.ResultSuccess)
	}
	return result.Donation, result.AlreadyAccepted, nil
}

func (f *FoodBridgeFacade) RejectDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, error) {
	result, err := f.ledger.Reject(ctx, donationID, organizationID)
	if result != nil {
		f.dispatch(ctx, result.Events)
	}
	if err != nil {
		f.metrics.Decision(decisionReject, metrics.ResultFailure)
		return nil, err
	}
	f.metrics.Decision(decisionReject, metrics.ResultSuccess)
	return result.Donation, nil
}

func (f *FoodBridgeFacade) RateDonor(ctx context.Context, in model.NewRating) (*model.DonorRating, *model.DonorScore, error) {
	result, err := f.ratings.RateDonor(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	f.dispatch(ctx, result.Events)
	return result.Rating, result.Score, nil
}

func (f *FoodBridgeFacade) DonorRating(ctx context.Context, donorID int64) (*model.DonorScore, error) {
	return f.ratings.Score(ctx, donorID)
}

func (f *FoodBridgeFacade) SetLocation(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error) {
	return f.donations.SetLocation(ctx, loc)
}

// Inventory lists the unexpired stock an organization holds.
func (f *FoodBridgeFacade) Inventory(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	held, events, err := f.ledger.Holdings(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	f.dispatch(ctx, events)
	return held, nil
}

func (f *FoodBridgeFacade) NearbyOrganizations(ctx context.Context, lat, lng float64, limit int) ([]model.NearbyOrganization, error) {
	return f.donations.Nearby(ctx, lat, lng, limit)
}

func (f *FoodBridgeFacade) Supplier(ctx context.Context, item string) (*model.OrganizationStock, error) {
	return f.donations.Supplier(ctx, item)
}

func (f *FoodBridgeFacade) CreateOrder(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error) {
	result, err := f.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	f.dispatch(ctx, result.Events)
	return result.Order, nil
}

func (f *FoodBridgeFacade) Order(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	return f.orders.Details(ctx, orderID)
}

// ApproveOrder claims the order for the organization and allocates stock to it.
func (f *FoodBridgeFacade) ApproveOrder(ctx context.Context, orderID, organizationID int64) (*model.OrderDetails, error) {
	result, err := f.orders.ApproveAndAllocate(ctx, orderID, organizationID)
	if result != nil {
		f.dispatch(ctx, result.Events())
	}
	if err != nil {
		f.metrics.Allocation(metrics.ResultFailure, 0)
		return nil, err
	}

	allocation := result.Allocation
	if allocation.Replayed {
		f.metrics.Allocation(metrics.ResultReplay, 0)
	} else {
		f.metrics.Allocation(metrics.ResultSuccess, allocation.Servings())
		f.publish(allocation.Delivery)
	}
	return &model.OrderDetails{
		Order:       *allocation.Order,
		Allocations: allocation.Allocations,
		Delivery:    allocation.Delivery,
		Replayed:    allocation.Replayed,
	}, nil
}

func (f *FoodBridgeFacade) RejectOrder(ctx context.Context, orderID, organizationID int64) (*model.ReceiverOrder, error) {
	result, err := f.orders.Reject(ctx, orderID, organizationID)
	if err != nil {
		return nil, err
	}
	f.dispatch(ctx, result.Events)
	return result.Order, nil
}

// UpdateDelivery records delivery progress and pushes it to live watchers.
func (f *FoodBridgeFacade) UpdateDelivery(ctx context.Context, in model.DeliveryUpdate) (*model.Delivery, error) {
	result, err := f.deliveries.UpdateStatus(ctx, in)
	if err != nil {
		return nil, err
	}
	f.publish(result.Delivery)
	f.dispatch(ctx, result.Events)
	return result.Delivery, nil
}

func (f *FoodBridgeFacade) Delivery(ctx context.Context, deliveryID int64) (*model.Delivery, error) {
	return f.deliveries.Get(ctx, deliveryID)
}

// SweepExpired expires overdue donations and returns their events undispatched.
func (f *FoodBridgeFacade) SweepExpired(ctx context.Context, limit int) ([]model.Event, error) {
	return f.ledger.SweepExpired(ctx, limit)
}

// NotifyEvent dispatches a single event and reports the failure to the caller.
func (f *FoodBridgeFacade) NotifyEvent(ctx context.Context, event model.Event) error {
	if f.events == nil {
		return nil
	}
	return f.events.Dispatch(ctx, []model.Event{event})
}
