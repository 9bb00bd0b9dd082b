package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// EventService implements event lifecycle and the capacity-bounded
// join/leave participation rules.
type EventService struct {
	events ports.EventRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewEventService(events ports.EventRepository, users ports.UserRepository, logger zerolog.Logger) *EventService {
	return &EventService{events: events, users: users, logger: logger}
}

var _ ports.EventService = (*EventService)(nil)

// Create persists a new event owned by the organizer, starting as upcoming.
func (s *EventService) Create(ctx context.Context, input ports.CreateEventInput) (*domain.Event, error) {
	for _, field := range []string{input.Title, input.Description, input.Time, input.Location, input.Category} {
		if strings.TrimSpace(field) == "" {
			return nil, domain.ErrMissingFields
		}
	}
	if input.Date.IsZero() || input.OrganizerID == "" {
		return nil, domain.ErrMissingFields
	}

	now := time.Now().UTC()
	event, err := s.events.Create(ctx, &domain.Event{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Time:        input.Time,
		Location:    input.Location,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Organizer:   input.OrganizerID,
		Attendees:   []string{},
		Capacity:    input.Capacity,
		Status:      domain.StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create event")
		return nil, err
	}

	s.logger.Info().Str("event_id", event.ID).Str("organizer", event.Organizer).Msg("event created")
	return event, nil
}

// Delete removes an event. Only the organizer may delete it.
func (s *EventService) Delete(ctx context.Context, eventID, callerID string) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Organizer != callerID {
		return domain.ErrForbidden
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", eventID).Msg("event deleted")
	return nil
}

// Join appends the user to the attendee list. The write is a conditional
// update, so the capacity and duplicate checks hold even under concurrent
// joins; the pre-read only provides a precise error for the common cases.
func (s *EventService) Join(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := joinRejection(event, userID); err != nil {
		return nil, err
	}

	matched, err := s.events.AddAttendee(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Lost a race between the pre-read and the write. Re-read to
		// report the actual reason.
		event, err = s.events.FindByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := joinRejection(event, userID); err != nil {
			return nil, err
		}
		return nil, domain.ErrEventFull
	}

	event, err = s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", eventID).Str("user_id", userID).Msg("user joined event")
	return event, nil
}

func joinRejection(event *domain.Event, userID string) error {
	switch {
	case event.Status == domain.StatusCompleted:
		return domain.ErrEventClosed
	case event.HasAttendee(userID):
		return domain.ErrAlreadyJoined
	case event.IsFull():
		return domain.ErrEventFull
	}
	return nil
}

// Leave removes the user from the attendee list.
func (s *EventService) Leave(ctx context.Context, eventID, userID string) error {
	matched, err := s.events.RemoveAttendee(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !matched {
		if _, err := s.events.FindByID(ctx, eventID); err != nil {
			return err
		}
		return domain.ErrNotAttendee
	}

	s.logger.Info().Str("event_id", eventID).Str("user_id", userID).Msg("user left event")
	return nil
}

// ListUpcomingForUser returns future events the user organizes or attends,
// ascending by date.
func (s *EventService) ListUpcomingForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	return s.events.ListForUser(ctx, userID, time.Now().UTC())
}

// ListPast returns events whose date has passed, in store order.
func (s *EventService) ListPast(ctx context.Context) ([]*domain.Event, error) {
	return s.events.ListPast(ctx, time.Now().UTC())
}

// ListAllUpcomingPublic returns upcoming events with organizer and attendee
// identities resolved for display.
func (s *EventService) ListAllUpcomingPublic(ctx context.Context) ([]ports.PublicEvent, error) {
	events, err := s.events.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(events)*4)
	for _, e := range events {
		ids = append(ids, e.Organizer)
		ids = append(ids, e.Attendees...)
	}

	users, err := s.users.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	public := make([]ports.PublicEvent, 0, len(events))
	for _, e := range events {
		pe := ports.PublicEvent{Event: e, Attendees: []ports.AttendeeRef{}}
		if org, ok := byID[e.Organizer]; ok {
			ref := toRef(org)
			pe.Organizer = &ref
		}
		for _, id := range e.Attendees {
			if u, ok := byID[id]; ok {
				pe.Attendees = append(pe.Attendees, toRef(u))
			}
		}
		public = append(public, pe)
	}
	return public, nil
}

func toRef(u *domain.User) ports.AttendeeRef {
	return ports.AttendeeRef{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
