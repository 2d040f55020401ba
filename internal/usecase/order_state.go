package usecase

import (
	"fmt"
	"slices"
	"time"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusRequested: {model.OrderStatusApproved, model.OrderStatusRejected},
	model.OrderStatusApproved:  {model.OrderStatusAllocated, model.OrderStatusRejected},
	model.OrderStatusAllocated: {model.OrderStatusDelivered},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to model.OrderStatus) bool {
	return slices.Contains(orderTransitions[from], to)
}

func transitionOrder(o *model.ReceiverOrder, to model.OrderStatus, at time.Time) error {
	if !CanTransitionOrder(o.Status, to) {
		return fmt.Errorf("%w: order %d cannot move from %s to %s", domainErrors.ErrInvalidStateTransition, o.ID, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

var deliveryProgress = map[model.DeliveryStatus]int{
	model.DeliveryStatusPickedUp:  0,
	model.DeliveryStatusInTransit: 1,
	model.DeliveryStatusDelivered: 2,
}

// CanTransitionDelivery reports whether delivery progress may move to the given status.
// Progress never goes backwards and a delivered record is final.
func CanTransitionDelivery(from, to model.DeliveryStatus) bool {
	if from == model.DeliveryStatusDelivered || !to.Valid() {
		return false
	}
	return deliveryProgress[to] >= deliveryProgress[from]
}

func transitionDelivery(d *model.Delivery, to model.DeliveryStatus, at time.Time) error {
	if !CanTransitionDelivery(d.Status, to) {
		return fmt.Errorf("%w: delivery %d cannot move from %s to %s", domainErrors.ErrInvalidStateTransition, d.ID, d.Status, to)
	}
	d.Status = to
	d.UpdatedAt = at
	if to == model.DeliveryStatusDelivered {
		delivered := at
		d.DeliveredAt = &delivered
	}
	return nil
}
