package model

import "time"

// DonationStatus describes donation lifecycle.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusAccepted  DonationStatus = "ACCEPTED"
	DonationStatusPartial   DonationStatus = "PARTIAL"
	DonationStatusRejected  DonationStatus = "REJECTED"
	DonationStatusExpired   DonationStatus = "EXPIRED"
	DonationStatusDelivered DonationStatus = "DELIVERED"
)

// Donation is a quantity of prepared food offered by a donor.
// Quantities are counted in servings.
type Donation struct {
	ID             int64
	DonorID        int64
	Item           string
	Note           string
	Quantity       int
	Remaining      int
	PreparedAt     time.Time
	ExpiresAt      time.Time
	PickupLat      float64
	PickupLng      float64
	Status         DonationStatus
	OrganizationID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Open reports whether the donation can still expire.
func (d *Donation) Open() bool {
	switch d.Status {
	case DonationStatusPending, DonationStatusAccepted, DonationStatusPartial:
		return true
	}
	return false
}

// ClaimedBy reports whether orgID is the accepting organization.
func (d *Donation) ClaimedBy(orgID int64) bool {
	return d.OrganizationID != nil && *d.OrganizationID == orgID
}

// NewDonation carries donor supplied fields for a new donation.
type NewDonation struct {
	DonorID    int64
	Item       string
	Note       string
	Quantity   int
	PreparedAt time.Time
	ExpiresAt  time.Time
	PickupLat  float64
	PickupLng  float64
}
