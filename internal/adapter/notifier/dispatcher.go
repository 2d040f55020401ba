package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// FailureRecorder counts notifications that could not be sent.
type FailureRecorder interface {
	NotificationFailed(kind string)
}

// Dispatcher turns committed domain events into user notifications.
type Dispatcher struct {
	sender   Sender
	failures FailureRecorder
	logger   *slog.Logger
}

// NewDispatcher constructs Dispatcher. failures may be nil.
func NewDispatcher(sender Sender, failures FailureRecorder, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, failures: failures, logger: logger}
}

// Dispatch notifies about every event and returns the combined delivery errors.
func (d *Dispatcher) Dispatch(ctx context.Context, events []model.Event) error {
	var errs error
	for _, e := range events {
		errs = multierr.Append(errs, d.Notify(ctx, e))
	}
	return errs
}

// Notify sends the messages of a single event.
func (d *Dispatcher) Notify(ctx context.Context, event model.Event) error {
	var errs error
	for _, msg := range Messages(event) {
		if err := d.sender.Send(ctx, msg); err != nil {
			if d.failures != nil {
				d.failures.NotificationFailed(string(msg.Kind))
			}
			d.logger.Warn("notification failed",
				slog.String("kind", string(msg.Kind)),
				slog.String("event_id", event.ID),
				slog.Int64("recipient_id", msg.RecipientID),
				slog.String("error", err.Error()))
			errs = multierr.Append(errs, fmt.Errorf("notify %s: %w", msg.Kind, err))
		}
	}
	return errs
}

// Messages maps an event to the notifications it causes. Events nobody is told about yield none.
func Messages(e model.Event) []Message {
	base := Message{EventID: e.ID, OccurredAt: e.OccurredAt}

	switch e.Type {
	case model.EventDonationAccepted:
		if e.Donation == nil {
			return nil
		}
		base.Kind = KindDonorAccepted
		base.RecipientID = e.Donation.DonorID
		base.Subject = "Your donation was approved"
		base.Body = fmt.Sprintf("Your donation %q was approved. Thank you for contributing!", e.Donation.Item)
	case model.EventDonationExpired:
		if e.Donation == nil {
			return nil
		}
		base.Kind = KindDonorExpired
		base.RecipientID = e.Donation.DonorID
		base.Subject = "Your donation expired"
		base.Body = fmt.Sprintf("Your donation %q has expired.", e.Donation.Item)
	case model.EventDonorAllocated:
		if e.Donation == nil || e.Allocation == nil {
			return nil
		}
		base.Kind = KindDonorAllocated
		base.RecipientID = e.Donation.DonorID
		base.Subject = "Your donation is on its way"
		base.Body = fmt.Sprintf("%d servings of your donation %q were allocated to order %d.",
			e.Allocation.Quantity, e.Donation.Item, e.Allocation.OrderID)
	case model.EventDonorRated:
		if e.Rating == nil {
			return nil
		}
		base.Kind = KindDonorRated
		base.RecipientID = e.Rating.DonorID
		base.Subject = "You received a rating"
		base.Body = fmt.Sprintf("Your donation %d was rated %d out of 5.", e.Rating.DonationID, e.Rating.Stars)
	case model.EventOrderCreated:
		if e.Order == nil {
			return nil
		}
		base.Kind = KindReceiverOrderCreated
		base.RecipientID = e.Order.ReceiverID
		base.Subject = "Your request was accepted"
		base.Body = fmt.Sprintf("Your request for %q was accepted. We'll keep you posted on delivery updates.", e.Order.Item)
	case model.EventOrderApproved, model.EventOrderAllocated, model.EventOrderRejected, model.EventOrderDelivered:
		if e.Order == nil {
			return nil
		}
		status := statusLabel(string(e.Order.Status))
		base.Kind = KindReceiverStatusChanged
		base.RecipientID = e.Order.ReceiverID
		base.Subject = "Order update: " + status
		base.Body = fmt.Sprintf("Your order for %q is now %s.", e.Order.Item, status)
	default:
		return nil
	}
	return []Message{base}
}

func statusLabel(status string) string {
	words := strings.Split(strings.ToLower(status), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
