package handlers

import (
	"context"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// DonationFacade describes donation operations exposed via HTTP.
type DonationFacade interface {
	PostDonation(ctx context.Context, in model.NewDonation) (*model.Donation, error)
	Donation(ctx context.Context, id int64) (*model.Donation, error)
	ReviewQueue(ctx context.Context, organizationID int64) ([]model.Donation, error)
	AcceptDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, bool, error)
	RejectDonation(ctx context.Context, donationID, organizationID int64) (*model.Donation, error)
}

// RatingFacade provides donor rating operations.
type RatingFacade interface {
	RateDonor(ctx context.Context, in model.NewRating) (*model.DonorRating, *model.DonorScore, error)
	DonorRating(ctx context.Context, donorID int64) (*model.DonorScore, error)
}

// OrganizationFacade provides organization side lookups.
type OrganizationFacade interface {
	SetLocation(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error)
	Inventory(ctx context.Context, organizationID int64) ([]model.Donation, error)
	NearbyOrganizations(ctx context.Context, lat, lng float64, limit int) ([]model.NearbyOrganization, error)
	Supplier(ctx context.Context, item string) (*model.OrganizationStock, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error)
	Order(ctx context.Context, orderID int64) (*model.OrderDetails, error)
	ApproveOrder(ctx context.Context, orderID, organizationID int64) (*model.OrderDetails, error)
	RejectOrder(ctx context.Context, orderID, organizationID int64) (*model.ReceiverOrder, error)
}

// DeliveryFacade provides delivery tracking operations.
type DeliveryFacade interface {
	UpdateDelivery(ctx context.Context, in model.DeliveryUpdate) (*model.Delivery, error)
	Delivery(ctx context.Context, deliveryID int64) (*model.Delivery, error)
}

// FoodBridgeFacade aggregates the full set of operations used across handlers.
type FoodBridgeFacade interface {
	DonationFacade
	RatingFacade
	OrganizationFacade
	OrderFacade
	DeliveryFacade
}

// DeliveryFeed hands out live delivery updates of an order.
type DeliveryFeed interface {
	Subscribe(orderID int64) (<-chan model.Delivery, func())
}
