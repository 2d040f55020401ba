package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Donations() DonationRepository
	Orders() OrderRepository
	Allocations() AllocationRepository
	Deliveries() DeliveryRepository
	Locations() LocationRepository
	Ratings() RatingRepository
}

// Transactor runs fn inside one transaction carried by the returned context.
// Nested calls join the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
