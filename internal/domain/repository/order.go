package repository

import (
	"context"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// OrderRepository describes persistence operations with receiver orders.
type OrderRepository interface {
	Create(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error)
	Get(ctx context.Context, id int64) (*model.ReceiverOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*model.ReceiverOrder, error)
	Update(ctx context.Context, o *model.ReceiverOrder) error
}

// AllocationRepository stores immutable allocation rows.
type AllocationRepository interface {
	Create(ctx context.Context, a model.Allocation) (*model.Allocation, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Allocation, error)
	DeliveredToReceiver(ctx context.Context, donationID, receiverID int64) (bool, error)
}

// DeliveryRepository describes persistence operations with deliveries.
type DeliveryRepository interface {
	Ensure(ctx context.Context, orderID, organizationID int64) (*model.Delivery, error)
	Get(ctx context.Context, id int64) (*model.Delivery, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Delivery, error)
	GetByOrder(ctx context.Context, orderID int64) (*model.Delivery, error)
	Update(ctx context.Context, d *model.Delivery) error
}
