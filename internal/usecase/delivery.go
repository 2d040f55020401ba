package usecase

import (
	"context"
	"fmt"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

// DeliveryResult is the outcome of a delivery progress update.
type DeliveryResult struct {
	Delivery *model.Delivery
	Order    *model.ReceiverOrder
	Events   []model.Event
}

// DeliveryUseCase records delivery progress reported by organizations.
type DeliveryUseCase struct {
	tx         repository.Transactor
	deliveries repository.DeliveryRepository
	orders     repository.OrderRepository
	clock      clock.Clock
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(tx repository.Transactor, deliveries repository.DeliveryRepository, orders repository.OrderRepository, clk clock.Clock) *DeliveryUseCase {
	return &DeliveryUseCase{tx: tx, deliveries: deliveries, orders: orders, clock: clk}
}

// Get returns a delivery record.
func (u *DeliveryUseCase) Get(ctx context.Context, deliveryID int64) (*model.Delivery, error) {
	return u.deliveries.Get(ctx, deliveryID)
}

// UpdateStatus advances a delivery and optionally records the courier position.
// Reaching DELIVERED completes the order; inventory was already consumed at allocation.
func (u *DeliveryUseCase) UpdateStatus(ctx context.Context, in model.DeliveryUpdate) (*DeliveryResult, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown delivery status %q", domainErrors.ErrValidation, in.Status)
	}
	if err := ValidateOptionalCoordinates(in.LiveLat, in.LiveLng); err != nil {
		return nil, err
	}

	result := &DeliveryResult{}
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result.Events = nil
		delivery, err := u.deliveries.GetForUpdate(ctx, in.DeliveryID)
		if err != nil {
			return err
		}
		if delivery.OrganizationID != in.OrganizationID {
			return fmt.Errorf("%w: delivery %d belongs to another organization", domainErrors.ErrNotEligible, delivery.ID)
		}

		now := u.clock.Now()
		if err := transitionDelivery(delivery, in.Status, now); err != nil {
			return err
		}
		if in.LiveLat != nil {
			lat, lng := *in.LiveLat, *in.LiveLng
			delivery.LiveLat = &lat
			delivery.LiveLng = &lng
		}
		if err := u.deliveries.Update(ctx, delivery); err != nil {
			return err
		}
		result.Delivery = delivery

		event := newEvent(model.EventDeliveryStatusChanged, now)
		snapshot := *delivery
		event.Delivery = &snapshot
		result.Events = append(result.Events, event)

		if delivery.Status != model.DeliveryStatusDelivered {
			return nil
		}

		order, err := u.orders.GetForUpdate(ctx, delivery.OrderID)
		if err != nil {
			return err
		}
		if err := transitionOrder(order, model.OrderStatusDelivered, now); err != nil {
			return err
		}
		if err := u.orders.Update(ctx, order); err != nil {
			return err
		}
		result.Order = order
		result.Events = append(result.Events, orderEvent(model.EventOrderDelivered, now, order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
