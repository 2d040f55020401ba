package repository

import (
	"context"
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// DonationRepository describes persistence operations with donations.
// ForUpdate and Lock methods must run inside a transaction and hold row locks until it ends.
type DonationRepository interface {
	Create(ctx context.Context, in model.NewDonation) (*model.Donation, error)
	Get(ctx context.Context, id int64) (*model.Donation, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Donation, error)
	Update(ctx context.Context, d *model.Donation) error
	LockAllocatable(ctx context.Context, organizationID int64, item string) ([]model.Donation, error)
	LockExpired(ctx context.Context, now time.Time, limit int) ([]model.Donation, error)
	ListPending(ctx context.Context, now time.Time) ([]model.Donation, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]model.Donation, error)
	AvailableStock(ctx context.Context, item string, organizationID *int64, now time.Time) (int, error)
	StockByOrganization(ctx context.Context, item string, now time.Time) ([]model.OrganizationStock, error)
}
