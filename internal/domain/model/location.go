package model

import "time"

// OrganizationLocation is the single registered place of an organization.
// Coordinates may be missing until the organization sets them.
type OrganizationLocation struct {
	OrganizationID int64
	Lat            *float64
	Lng            *float64
	Label          string
	UpdatedAt      time.Time
}

// OrganizationStock is the remaining stock an organization holds for an item.
type OrganizationStock struct {
	OrganizationID int64
	Item           string
	Remaining      int
}
