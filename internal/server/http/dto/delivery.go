package dto

import "time"

// UpdateDeliveryRequest reports delivery progress and an optional courier position.
type UpdateDeliveryRequest struct {
	Status  string   `json:"status"`
	LiveLat *float64 `json:"live_lat"`
	LiveLng *float64 `json:"live_lng"`
}

// DeliveryResponse describes a delivery.
type DeliveryResponse struct {
	ID             int64      `json:"id"`
	OrderID        int64      `json:"order_id"`
	OrganizationID int64      `json:"organization_id"`
	Status         string     `json:"status"`
	LiveLat        *float64   `json:"live_lat,omitempty"`
	LiveLng        *float64   `json:"live_lng,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
