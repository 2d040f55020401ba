package model

import "time"

// RaterRole identifies who gave a donor rating.
type RaterRole string

const (
	RaterRoleOrganization RaterRole = "ORGANIZATION"
	RaterRoleReceiver     RaterRole = "RECEIVER"
)

// DonorRating is a star rating given to a donor for one donation.
type DonorRating struct {
	ID         int64
	DonationID int64
	DonorID    int64
	RaterID    int64
	RaterRole  RaterRole
	Stars      int
	Comment    string
	CreatedAt  time.Time
}

// RatingAverages holds per dimension star averages of a donor.
type RatingAverages struct {
	Organization      float64
	OrganizationCount int
	Receiver          float64
	ReceiverCount     int
}

// DonorScore is the derived reputation of a donor.
type DonorScore struct {
	DonorID   int64
	Averages  RatingAverages
	Composite float64
}
