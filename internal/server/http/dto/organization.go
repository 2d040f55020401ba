package dto

import "time"

// LocationRequest sets the caller organization's location.
type LocationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Label string   `json:"label"`
}

// LocationResponse describes a stored organization location.
type LocationResponse struct {
	OrganizationID int64     `json:"organization_id"`
	Lat            *float64  `json:"lat"`
	Lng            *float64  `json:"lng"`
	Label          string    `json:"label,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NearbyOrganizationResponse is one entry of a distance ranking.
type NearbyOrganizationResponse struct {
	OrganizationID int64   `json:"organization_id"`
	Label          string  `json:"label,omitempty"`
	DistanceKm     float64 `json:"distance_km"`
}

// SupplierResponse names the organization with the most stock of an item.
type SupplierResponse struct {
	OrganizationID int64  `json:"organization_id"`
	Item           string `json:"item"`
	Remaining      int    `json:"remaining"`
}
