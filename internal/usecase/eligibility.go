package usecase

import (
	"slices"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/geo"
)

// EligibilityPolicy decides which organizations may act on a pending donation.
// Only the limit nearest organizations to the pickup point qualify.
type EligibilityPolicy struct {
	limit int
}

// NewEligibilityPolicy constructs EligibilityPolicy. Non-positive limits fall back to geo.DefaultLimit.
func NewEligibilityPolicy(limit int) *EligibilityPolicy {
	if limit <= 0 {
		limit = geo.DefaultLimit
	}
	return &EligibilityPolicy{limit: limit}
}

// Limit returns the number of organizations admitted per donation.
func (p *EligibilityPolicy) Limit() int {
	return p.limit
}

// EligibleOrganizations returns identities of the nearest organizations, nearest first.
func (p *EligibilityPolicy) EligibleOrganizations(d *model.Donation, locations []model.OrganizationLocation) []int64 {
	ranked := geo.Nearest(pickupPoint(d), locations, locationPoint, p.limit)
	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Item.OrganizationID)
	}
	return ids
}

// IsEligible reports whether organizationID is among the eligible organizations.
func (p *EligibilityPolicy) IsEligible(d *model.Donation, locations []model.OrganizationLocation, organizationID int64) bool {
	return slices.Contains(p.EligibleOrganizations(d, locations), organizationID)
}

func pickupPoint(d *model.Donation) *geo.Point {
	if d == nil {
		return nil
	}
	return &geo.Point{Lat: d.PickupLat, Lng: d.PickupLng}
}

func locationPoint(l model.OrganizationLocation) *geo.Point {
	return geo.PointOf(l.Lat, l.Lng)
}
