package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

func newEvent(t model.EventType, at time.Time) model.Event {
	return model.Event{ID: uuid.NewString(), Type: t, OccurredAt: at}
}

func donationEvent(t model.EventType, at time.Time, d *model.Donation) model.Event {
	e := newEvent(t, at)
	snapshot := *d
	e.Donation = &snapshot
	return e
}

func orderEvent(t model.EventType, at time.Time, o *model.ReceiverOrder) model.Event {
	e := newEvent(t, at)
	snapshot := *o
	e.Order = &snapshot
	return e
}
