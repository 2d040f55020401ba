package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/polkiloo/foodbridge/internal/clock"
	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

// DonorRater supplies composite donor ratings for ranking.
type DonorRater interface {
	CompositeDonorRating(ctx context.Context, donorID int64) (float64, error)
}

// AllocationResult is the outcome of an allocation run.
// Replayed is set when the order had already been allocated and nothing was written.
type AllocationResult struct {
	Order       *model.ReceiverOrder
	Allocations []model.Allocation
	Delivery    *model.Delivery
	Replayed    bool
	Events      []model.Event
}

// Servings sums the quantities of all allocations.
func (r *AllocationResult) Servings() int {
	total := 0
	for _, a := range r.Allocations {
		total += a.Quantity
	}
	return total
}

// AllocationEngine splits an approved order across the assigned organization's donations.
type AllocationEngine struct {
	tx          repository.Transactor
	orders      repository.OrderRepository
	donations   repository.DonationRepository
	allocations repository.AllocationRepository
	deliveries  repository.DeliveryRepository
	rater       DonorRater
	clock       clock.Clock
}

// NewAllocationEngine constructs AllocationEngine.
func NewAllocationEngine(tx repository.Transactor, orders repository.OrderRepository, donations repository.DonationRepository, allocations repository.AllocationRepository, deliveries repository.DeliveryRepository, rater DonorRater, clk clock.Clock) *AllocationEngine {
	return &AllocationEngine{
		tx:          tx,
		orders:      orders,
		donations:   donations,
		allocations: allocations,
		deliveries:  deliveries,
		rater:       rater,
		clock:       clk,
	}
}

type candidate struct {
	donation *model.Donation
	rating   float64
}

type allocationStep struct {
	candidate *candidate
	quantity  int
}

// Allocate fills the order from candidate donations, best rated donors first and
// earliest expiry among equals. Either every allocation, inventory decrement and the
// order status change commit together or none of them do.
//
// Allocating an order that is already ALLOCATED returns its existing allocations.
func (e *AllocationEngine) Allocate(ctx context.Context, orderID int64) (*AllocationResult, error) {
	var result *AllocationResult
	err := e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result = nil
		order, err := e.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.OrderStatusAllocated {
			result, err = e.replay(ctx, order)
			return err
		}
		if order.Status != model.OrderStatusApproved || order.OrganizationID == nil {
			return fmt.Errorf("%w: order %d is %s and cannot be allocated", domainErrors.ErrInvalidStateTransition, order.ID, order.Status)
		}

		now := e.clock.Now()
		result = &AllocationResult{Order: order}

		candidates, err := e.lockCandidates(ctx, order, result)
		if err != nil {
			return err
		}

		plan, shortfall := planAllocation(candidates, order.Quantity)
		if shortfall > 0 {
			return fmt.Errorf("%w: order %d needs %d more servings of %q",
				domainErrors.ErrInsufficientStock, order.ID, shortfall, order.Item)
		}

		for _, step := range plan {
			d := step.candidate.donation
			if err := consume(d, step.quantity, now); err != nil {
				return err
			}
			if err := e.donations.Update(ctx, d); err != nil {
				return err
			}
			alloc, err := e.allocations.Create(ctx, model.Allocation{
				OrderID:    order.ID,
				DonationID: d.ID,
				DonorID:    d.DonorID,
				Quantity:   step.quantity,
				CreatedAt:  now,
			})
			if err != nil {
				return err
			}
			event := donationEvent(model.EventDonorAllocated, now, d)
			allocSnapshot := *alloc
			event.Allocation = &allocSnapshot
			result.Events = append(result.Events, event)
		}

		if err := transitionOrder(order, model.OrderStatusAllocated, now); err != nil {
			return err
		}
		if err := e.orders.Update(ctx, order); err != nil {
			return err
		}

		if result.Delivery, err = e.deliveries.Ensure(ctx, order.ID, *order.OrganizationID); err != nil {
			return err
		}
		if result.Allocations, err = e.allocations.ListByOrder(ctx, order.ID); err != nil {
			return err
		}
		result.Events = append(result.Events, orderEvent(model.EventOrderAllocated, now, order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *AllocationEngine) replay(ctx context.Context, order *model.ReceiverOrder) (*AllocationResult, error) {
	allocations, err := e.allocations.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	delivery, err := e.deliveries.GetByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &AllocationResult{Order: order, Allocations: allocations, Delivery: delivery, Replayed: true}, nil
}

// lockCandidates locks the organization's open stock for the item, drops donations
// that turn out to be expired and attaches donor ratings.
func (e *AllocationEngine) lockCandidates(ctx context.Context, order *model.ReceiverOrder, result *AllocationResult) ([]candidate, error) {
	locked, err := e.donations.LockAllocatable(ctx, *order.OrganizationID, order.Item)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	ratings := make(map[int64]float64)
	candidates := make([]candidate, 0, len(locked))
	for i := range locked {
		d := &locked[i]
		if expireIfDue(d, now) {
			if err := e.donations.Update(ctx, d); err != nil {
				return nil, err
			}
			result.Events = append(result.Events, donationEvent(model.EventDonationExpired, now, d))
			continue
		}
		if d.Remaining <= 0 {
			continue
		}
		rating, ok := ratings[d.DonorID]
		if !ok {
			if rating, err = e.rater.CompositeDonorRating(ctx, d.DonorID); err != nil {
				return nil, fmt.Errorf("rating donor %d: %w", d.DonorID, err)
			}
			ratings[d.DonorID] = rating
		}
		candidates = append(candidates, candidate{donation: d, rating: rating})
	}
	return candidates, nil
}

// planAllocation ranks candidates and greedily takes stock until need is met.
// It returns the steps and the quantity still missing.
func planAllocation(candidates []candidate, need int) ([]allocationStep, int) {
	ranked := make([]*candidate, 0, len(candidates))
	for i := range candidates {
		ranked = append(ranked, &candidates[i])
	}
	slices.SortStableFunc(ranked, compareCandidates)

	var plan []allocationStep
	for _, c := range ranked {
		if need == 0 {
			break
		}
		if c.donation.Remaining <= 0 {
			continue
		}
		take := min(need, c.donation.Remaining)
		plan = append(plan, allocationStep{candidate: c, quantity: take})
		need -= take
	}
	return plan, need
}

// compareCandidates orders by rating descending, then expiry ascending.
func compareCandidates(a, b *candidate) int {
	switch {
	case a.rating > b.rating:
		return -1
	case a.rating < b.rating:
		return 1
	}
	return a.donation.ExpiresAt.Compare(b.donation.ExpiresAt)
}
