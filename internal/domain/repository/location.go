package repository

import (
	"context"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// LocationRepository stores one location per organization.
type LocationRepository interface {
	Upsert(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error)
	List(ctx context.Context) ([]model.OrganizationLocation, error)
}
