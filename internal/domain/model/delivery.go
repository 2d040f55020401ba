package model

import "time"

// DeliveryStatus describes physical delivery progress.
type DeliveryStatus string

const (
	DeliveryStatusPickedUp  DeliveryStatus = "PICKED_UP"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

// Valid reports whether s is a known delivery status.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPickedUp, DeliveryStatusInTransit, DeliveryStatusDelivered:
		return true
	}
	return false
}

// Delivery tracks an allocated order on its way to the receiver.
type Delivery struct {
	ID             int64
	OrderID        int64
	OrganizationID int64
	Status         DeliveryStatus
	LiveLat        *float64
	LiveLng        *float64
	StartedAt      time.Time
	DeliveredAt    *time.Time
	UpdatedAt      time.Time
}
