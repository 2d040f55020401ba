package dto

import "time"

// RateDonorRequest describes a star rating for a donation's donor.
type RateDonorRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// RatingResponse describes a stored rating.
type RatingResponse struct {
	ID         int64     `json:"id"`
	DonationID int64     `json:"donation_id"`
	DonorID    int64     `json:"donor_id"`
	RaterRole  string    `json:"rater_role"`
	Stars      int       `json:"stars"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DimensionScore is the average and count of one rating dimension.
type DimensionScore struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// DonorScoreResponse describes a donor's reputation.
type DonorScoreResponse struct {
	DonorID      int64          `json:"donor_id"`
	Organization DimensionScore `json:"organization"`
	Receiver     DimensionScore `json:"receiver"`
	Composite    float64        `json:"composite"`
}

// RateDonorResponse returns the stored rating with the updated score.
type RateDonorResponse struct {
	Rating RatingResponse     `json:"rating"`
	Score  DonorScoreResponse `json:"score"`
}
