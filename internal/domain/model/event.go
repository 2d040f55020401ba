package model

import "time"

// EventType names a state change the notification collaborator reacts to.
type EventType string

const (
	EventDonationAccepted      EventType = "donation.accepted"
	EventDonationRejected      EventType = "donation.rejected"
	EventDonationExpired       EventType = "donation.expired"
	EventOrderCreated          EventType = "order.created"
	EventOrderApproved         EventType = "order.approved"
	EventOrderAllocated        EventType = "order.allocated"
	EventOrderRejected         EventType = "order.rejected"
	EventOrderDelivered        EventType = "order.delivered"
	EventDeliveryStatusChanged EventType = "delivery.status_changed"
	EventDonorAllocated        EventType = "donor.allocated"
	EventDonorRated            EventType = "donor.rated"
)

// Event is emitted by a committed state transition.
// Only the references relevant to Type are set.
type Event struct {
	ID         string
	Type       EventType
	OccurredAt time.Time
	Donation   *Donation
	Order      *ReceiverOrder
	Delivery   *Delivery
	Allocation *Allocation
	Rating     *DonorRating
}
