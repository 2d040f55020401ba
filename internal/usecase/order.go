package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

// OrderResult is the outcome of an order state change.
type OrderResult struct {
	Order  *model.ReceiverOrder
	Events []model.Event
}

// OrderUseCase drives receiver orders through their lifecycle.
type OrderUseCase struct {
	tx          repository.Transactor
	orders      repository.OrderRepository
	donations   repository.DonationRepository
	allocations repository.AllocationRepository
	deliveries  repository.DeliveryRepository
	engine      *AllocationEngine
	clock       clock.Clock
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(tx repository.Transactor, orders repository.OrderRepository, donations repository.DonationRepository, allocations repository.AllocationRepository, deliveries repository.DeliveryRepository, engine *AllocationEngine, clk clock.Clock) *OrderUseCase {
	return &OrderUseCase{
		tx:          tx,
		orders:      orders,
		donations:   donations,
		allocations: allocations,
		deliveries:  deliveries,
		engine:      engine,
		clock:       clk,
	}
}

// Create registers a receiver request after checking that enough unexpired stock exists.
// When an organization is named only its stock counts and the order is assigned to it.
func (u *OrderUseCase) Create(ctx context.Context, in model.NewOrder) (*OrderResult, error) {
	item, err := NormalizeItem(in.Item)
	if err != nil {
		return nil, err
	}
	in.Item = item
	if err := ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := ValidateCoordinates(in.DeliveryLat, in.DeliveryLng); err != nil {
		return nil, err
	}

	now := u.clock.Now()
	available, err := u.donations.AvailableStock(ctx, in.Item, in.OrganizationID, now)
	if err != nil {
		return nil, err
	}
	if in.Quantity > available {
		return nil, fmt.Errorf("%w: %d servings of %q requested, %d available",
			domainErrors.ErrInsufficientStock, in.Quantity, in.Item, available)
	}

	order, err := u.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, Events: []model.Event{orderEvent(model.EventOrderCreated, now, order)}}, nil
}

// Details returns an order with its allocations and delivery record.
func (u *OrderUseCase) Details(ctx context.Context, orderID int64) (*model.OrderDetails, error) {
	order, err := u.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	allocations, err := u.allocations.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	delivery, err := u.deliveries.GetByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	return &model.OrderDetails{Order: *order, Allocations: allocations, Delivery: delivery}, nil
}

// Claim assigns an order to the organization and approves it.
// Claiming an order the organization already approved or allocated changes nothing.
func (u *OrderUseCase) Claim(ctx context.Context, orderID, organizationID int64) (*OrderResult, error) {
	result := &OrderResult{}
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		result.Order = order
		if order.OrganizationID != nil && !order.AssignedTo(organizationID) {
			return fmt.Errorf("%w: order %d is handled by another organization", domainErrors.ErrNotEligible, order.ID)
		}

		switch order.Status {
		case model.OrderStatusApproved, model.OrderStatusAllocated:
			return nil
		case model.OrderStatusRequested:
		default:
			return fmt.Errorf("%w: order %d is %s", domainErrors.ErrInvalidStateTransition, order.ID, order.Status)
		}

		now := u.clock.Now()
		if err := transitionOrder(order, model.OrderStatusApproved, now); err != nil {
			return err
		}
		order.OrganizationID = &organizationID
		if err := u.orders.Update(ctx, order); err != nil {
			return err
		}
		result.Events = append(result.Events, orderEvent(model.EventOrderApproved, now, order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApprovalResult is the outcome of approving and allocating an order.
type ApprovalResult struct {
	Claim      *OrderResult
	Allocation *AllocationResult
}

// Events returns every event of the approval in commit order.
func (r *ApprovalResult) Events() []model.Event {
	var events []model.Event
	if r.Claim != nil {
		events = append(events, r.Claim.Events...)
	}
	if r.Allocation != nil {
		events = append(events, r.Allocation.Events...)
	}
	return events
}

// ApproveAndAllocate claims the order and then allocates it in a separate transaction.
// A failed allocation keeps the claim: the result carries the committed claim next to the error.
func (u *OrderUseCase) ApproveAndAllocate(ctx context.Context, orderID, organizationID int64) (*ApprovalResult, error) {
	claim, err := u.Claim(ctx, orderID, organizationID)
	if err != nil {
		return nil, err
	}
	result := &ApprovalResult{Claim: claim}

	allocation, err := u.engine.Allocate(ctx, orderID)
	if err != nil {
		return result, err
	}
	result.Allocation = allocation
	return result, nil
}

// Reject declines an order that has not been allocated yet.
func (u *OrderUseCase) Reject(ctx context.Context, orderID, organizationID int64) (*OrderResult, error) {
	result := &OrderResult{}
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := u.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.OrganizationID != nil && !order.AssignedTo(organizationID) {
			return fmt.Errorf("%w: order %d is handled by another organization", domainErrors.ErrNotEligible, order.ID)
		}
		now := u.clock.Now()
		if err := transitionOrder(order, model.OrderStatusRejected, now); err != nil {
			return err
		}
		if err := u.orders.Update(ctx, order); err != nil {
			return err
		}
		result.Order = order
		result.Events = append(result.Events, orderEvent(model.EventOrderRejected, now, order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
