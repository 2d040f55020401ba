package dto

import "time"

// PostDonationRequest describes a donor's offer. Times may be omitted when the note mentions them.
type PostDonationRequest struct {
	Item       string     `json:"item"`
	Note       string     `json:"note"`
	Quantity   int        `json:"quantity"`
	PreparedAt *time.Time `json:"prepared_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	PickupLat  *float64   `json:"pickup_lat"`
	PickupLng  *float64   `json:"pickup_lng"`
}

// DonationResponse describes a donation.
type DonationResponse struct {
	ID              int64     `json:"id"`
	DonorID         int64     `json:"donor_id"`
	Item            string    `json:"item"`
	Note            string    `json:"note,omitempty"`
	Quantity        int       `json:"quantity"`
	Remaining       int       `json:"remaining"`
	PreparedAt      time.Time `json:"prepared_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	PickupLat       float64   `json:"pickup_lat"`
	PickupLng       float64   `json:"pickup_lng"`
	Status          string    `json:"status"`
	OrganizationID  *int64    `json:"organization_id,omitempty"`
	AlreadyAccepted bool      `json:"already_accepted,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
