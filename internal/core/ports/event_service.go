package ports

import (
	"context"
	"time"

	"github.com/gatherhub/event-management-api/internal/core/domain"
)

// CreateEventInput carries all data needed to create a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Category    string
	Capacity    int
	ImageURL    string
	OrganizerID string
}

// AttendeeRef is a resolved user identity embedded in public event views.
type AttendeeRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
}

// PublicEvent is an event with organizer and attendee identities resolved
// for display.
type PublicEvent struct {
	Event     *domain.Event `json:"event"`
	Organizer *AttendeeRef  `json:"organizer,omitempty"`
	Attendees []AttendeeRef `json:"attendees"`
}

// EventService defines event lifecycle and participation operations.
type EventService interface {
	Create(ctx context.Context, input CreateEventInput) (*domain.Event, error)
	// Delete removes an event. Only the organizer may delete it.
	Delete(ctx context.Context, eventID, callerID string) error
	Join(ctx context.Context, eventID, userID string) (*domain.Event, error)
	Leave(ctx context.Context, eventID, userID string) error
	ListUpcomingForUser(ctx context.Context, userID string) ([]*domain.Event, error)
	ListPast(ctx context.Context) ([]*domain.Event, error)
	ListAllUpcomingPublic(ctx context.Context) ([]PublicEvent, error)
}
