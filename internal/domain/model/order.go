package model

import "time"

// OrderStatus describes receiver order lifecycle.
type OrderStatus string

const (
	OrderStatusRequested OrderStatus = "REQUESTED"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusAllocated OrderStatus = "ALLOCATED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// ReceiverOrder is a receiver's aggregate request for an item quantity.
type ReceiverOrder struct {
	ID             int64
	ReceiverID     int64
	OrganizationID *int64
	Item           string
	Quantity       int
	DeliveryLat    float64
	DeliveryLng    float64
	Status         OrderStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AssignedTo reports whether orgID owns the order.
func (o *ReceiverOrder) AssignedTo(orgID int64) bool {
	return o.OrganizationID != nil && *o.OrganizationID == orgID
}

// NewOrder carries receiver supplied fields for a new order.
type NewOrder struct {
	ReceiverID     int64
	OrganizationID *int64
	Item           string
	Quantity       int
	DeliveryLat    float64
	DeliveryLng    float64
}

// Allocation records that an order consumed quantity from a donation.
type Allocation struct {
	ID         int64
	OrderID    int64
	DonationID int64
	DonorID    int64
	Quantity   int
	CreatedAt  time.Time
}
