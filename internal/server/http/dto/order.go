package dto

import "time"

// CreateOrderRequest describes a receiver request for servings of an item.
type CreateOrderRequest struct {
	Item           string  `json:"item"`
	Quantity       int     `json:"quantity"`
	OrganizationID *int64  `json:"organization_id"`
	DeliveryLat    *float64 `json:"delivery_lat"`
	DeliveryLng    *float64 `json:"delivery_lng"`
}

// OrderResponse describes a receiver order.
type OrderResponse struct {
	ID             int64     `json:"id"`
	ReceiverID     int64     `json:"receiver_id"`
	OrganizationID *int64    `json:"organization_id,omitempty"`
	Item           string    `json:"item"`
	Quantity       int       `json:"quantity"`
	DeliveryLat    float64   `json:"delivery_lat"`
	DeliveryLng    float64   `json:"delivery_lng"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AllocationResponse describes servings taken from one donation.
type AllocationResponse struct {
	DonationID int64 `json:"donation_id"`
	DonorID    int64 `json:"donor_id"`
	Quantity   int   `json:"quantity"`
}

// OrderDetailsResponse bundles an order with its allocations and delivery.
type OrderDetailsResponse struct {
	Order       OrderResponse        `json:"order"`
	Allocations []AllocationResponse `json:"allocations"`
	Delivery    *DeliveryResponse    `json:"delivery,omitempty"`
	Replayed    bool                 `json:"replayed,omitempty"`
}
