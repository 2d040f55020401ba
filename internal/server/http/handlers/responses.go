package handlers

import (
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

func toDonationResponse(d *model.Donation) dto.DonationResponse {
	return dto.DonationResponse{
		ID:             d.ID,
		DonorID:        d.DonorID,
		Item:           d.Item,
		Note:           d.Note,
		Quantity:       d.Quantity,
		Remaining:      d.Remaining,
		PreparedAt:     d.PreparedAt,
		ExpiresAt:      d.ExpiresAt,
		PickupLat:      d.PickupLat,
		PickupLng:      d.PickupLng,
		Status:         string(d.Status),
		OrganizationID: d.OrganizationID,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toDonationList(items []model.Donation) []dto.DonationResponse {
	out := make([]dto.DonationResponse, 0, len(items))
	for i := range items {
		out = append(out, toDonationResponse(&items[i]))
	}
	return out
}

func toOrderResponse(o *model.ReceiverOrder) dto.OrderResponse {
	return dto.OrderResponse{
		ID:             o.ID,
		ReceiverID:     o.ReceiverID,
		OrganizationID: o.OrganizationID,
		Item:           o.Item,
		Quantity:       o.Quantity,
		DeliveryLat:    o.DeliveryLat,
		DeliveryLng:    o.DeliveryLng,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func toOrderDetailsResponse(d *model.OrderDetails) dto.OrderDetailsResponse {
	resp := dto.OrderDetailsResponse{
		Order:       toOrderResponse(&d.Order),
		Allocations: make([]dto.AllocationResponse, 0, len(d.Allocations)),
		Replayed:    d.Replayed,
	}
	for _, a := range d.Allocations {
		resp.Allocations = append(resp.Allocations, dto.AllocationResponse{
			DonationID: a.DonationID,
			DonorID:    a.DonorID,
			Quantity:   a.Quantity,
		})
	}
	if d.Delivery != nil {
		delivery := toDeliveryResponse(d.Delivery)
		resp.Delivery = &delivery
	}
	return resp
}

func toDeliveryResponse(d *model.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		OrganizationID: d.OrganizationID,
		Status:         string(d.Status),
		LiveLat:        d.LiveLat,
		LiveLng:        d.LiveLng,
		StartedAt:      d.StartedAt,
		DeliveredAt:    d.DeliveredAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toScoreResponse(s *model.DonorScore) dto.DonorScoreResponse {
	return dto.DonorScoreResponse{
		DonorID: s.DonorID,
		Organization: dto.DimensionScore{
			Average: s.Averages.Organization,
			Count:   s.Averages.OrganizationCount,
		},
		Receiver: dto.DimensionScore{
			Average: s.Averages.Receiver,
			Count:   s.Averages.ReceiverCount,
		},
		Composite: s.Composite,
	}
}

func toRatingResponse(r *model.DonorRating) dto.RatingResponse {
	return dto.RatingResponse{
		ID:         r.ID,
		DonationID: r.DonationID,
		DonorID:    r.DonorID,
		RaterRole:  string(r.RaterRole),
		Stars:      r.Stars,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
