package model

import "time"

// OrderDetails bundles an order with its allocations and delivery record.
type OrderDetails struct {
	Order       ReceiverOrder
	Allocations []Allocation
	Delivery    *Delivery
	Replayed    bool
}

// NearbyOrganization is an organization ranked by distance to a point.
type NearbyOrganization struct {
	OrganizationID int64
	Label          string
	DistanceKm     float64
}

// DeliveryUpdate is an organization reported delivery progress.
// LiveLat and LiveLng are either both set or both nil.
type DeliveryUpdate struct {
	DeliveryID     int64
	OrganizationID int64
	Status         DeliveryStatus
	LiveLat        *float64
	LiveLng        *float64
}

// NewRating is a star rating submitted for a donation's donor.
type NewRating struct {
	DonationID int64
	RaterID    int64
	RaterRole  RaterRole
	Stars      int
	Comment    string
}

// NoteInterpretation is structured data extracted from a donor note.
type NoteInterpretation struct {
	Description string
	PreparedAt  *time.Time
	ExpiresAt   *time.Time
}
