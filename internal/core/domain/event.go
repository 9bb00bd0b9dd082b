package domain

import (
	"errors"
	"time"
)

// EventStatus represents the lifecycle state of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
)

var ErrEventNotFound = errors.New("event not found")
var ErrEventFull = errors.New("event is full")
var ErrEventClosed = errors.New("event is already completed")
var ErrAlreadyJoined = errors.New("user has already joined this event")
var ErrNotAttendee = errors.New("user is not an attendee of this event")
var ErrForbidden = errors.New("access forbidden")

// Event is the core aggregate root. The organizer reference is set at
// creation and never changes; attendees keep join order and each user
// appears at most once.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Time        string      `json:"time"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"image_url,omitempty"`
	Organizer   string      `json:"organizer"`
	Attendees   []string    `json:"attendees"`
	Capacity    int         `json:"capacity,omitempty"` // 0 = unlimited
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsFull reports whether the attendee list has reached capacity.
// A zero capacity means unbounded.
func (e *Event) IsFull() bool {
	return e.Capacity > 0 && len(e.Attendees) >= e.Capacity
}

// HasAttendee reports whether the user currently occupies a slot.
func (e *Event) HasAttendee(userID string) bool {
	for _, id := range e.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}
