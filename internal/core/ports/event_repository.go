package ports

import (
	"context"
	"time"

	"github.com/gatherhub/event-management-api/internal/core/domain"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	Delete(ctx context.Context, id string) error

	// AddAttendee appends userID to the attendee list as a single conditional
	// update: it only matches when the event is not completed, the user is
	// not already an attendee, and the capacity bound holds. matched is false
	// when any condition failed, so two concurrent joins near full capacity
	// cannot both land.
	AddAttendee(ctx context.Context, eventID, userID string) (matched bool, err error)
	// RemoveAttendee pulls userID from the attendee list. matched is false
	// when the user was not an attendee.
	RemoveAttendee(ctx context.Context, eventID, userID string) (matched bool, err error)

	// ListForUser returns events where the user is organizer or attendee and
	// date >= from, ascending by date.
	ListForUser(ctx context.Context, userID string, from time.Time) ([]*domain.Event, error)
	// ListPast returns events with date < before, in store order.
	ListPast(ctx context.Context, before time.Time) ([]*domain.Event, error)
	// ListUpcoming returns events with status upcoming and date >= from.
	ListUpcoming(ctx context.Context, from time.Time) ([]*domain.Event, error)
}
