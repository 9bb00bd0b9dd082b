package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gatherhub/event-management-api/internal/api/metrics"
	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// EventHandler handles event lifecycle and participation HTTP requests.
type EventHandler struct {
	service  ports.EventService
	uploader ports.ImageUploader // nil when no upload endpoint is configured
	logger   zerolog.Logger
}

func NewEventHandler(service ports.EventService, uploader ports.ImageUploader, logger zerolog.Logger) *EventHandler {
	return &EventHandler{service: service, uploader: uploader, logger: logger}
}

// Create handles POST /event/create-event. The body is multipart form data
// so the event image can ride along; the image is optional.
//
// @Summary      Create an event
// @Tags         event
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        date         formData  string  true   "Date (RFC3339 or YYYY-MM-DD)"
// @Param        time         formData  string  true   "Display time"
// @Param        location     formData  string  true   "Location"
// @Param        category     formData  string  true   "Category"
// @Param        capacity     formData  int     false  "Capacity (0 = unlimited)"
// @Param        imageUrl     formData  file    false  "Event image"
// @Success      201  {object}  eventResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /event/create-event [post]
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	date, err := parseEventDate(c.FormValue("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date format (use RFC3339 or YYYY-MM-DD)")
	}

	capacity := 0
	if raw := c.FormValue("capacity"); raw != "" {
		capacity, err = strconv.Atoi(raw)
		if err != nil || capacity < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "capacity must be a non-negative integer")
		}
	}

	imageURL, err := h.uploadImage(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("image upload failed")
		return echo.NewHTTPError(http.StatusBadGateway, "image upload failed")
	}

	event, err := h.service.Create(c.Request().Context(), ports.CreateEventInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Date:        date,
		Time:        c.FormValue("time"),
		Location:    c.FormValue("location"),
		Category:    c.FormValue("category"),
		Capacity:    capacity,
		ImageURL:    imageURL,
		OrganizerID: organizerID,
	})
	if err != nil {
		return err
	}

	metrics.EventsCreatedTotal.WithLabelValues(event.Category).Inc()
	return c.JSON(http.StatusCreated, eventResponse{
		Success: true,
		Message: "event created successfully",
		Event:   event,
	})
}

// uploadImage pushes the optional form file to the media store. Missing file
// or missing uploader both mean an event without an image.
func (h *EventHandler) uploadImage(c echo.Context) (string, error) {
	if h.uploader == nil {
		return "", nil
	}
	fileHeader, err := c.FormFile("imageUrl")
	if err != nil {
		return "", nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.uploader.Upload(c.Request().Context(), fileHeader.Filename, file)
}

// Delete handles DELETE /event/delete-event. The event ID comes from the
// id query parameter or a JSON body.
//
// @Summary      Delete an event
// @Tags         event
// @Produce      json
// @Security     BearerAuth
// @Param        id   query     string  false  "Event ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /event/delete-event [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	callerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	id := c.QueryParam("id")
	if id == "" {
		var req deleteEventRequest
		if err := c.Bind(&req); err == nil {
			id = req.ID
		}
	}
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event id is required")
	}

	if err := h.service.Delete(c.Request().Context(), id, callerID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "event deleted successfully"})
}

// Join handles POST /event/join/:eventId.
//
// @Summary      Join an event
// @Tags         event
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string  true  "Event ID"
// @Success      200      {object}  eventResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /event/join/{eventId} [post]
func (h *EventHandler) Join(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	event, err := h.service.Join(c.Request().Context(), c.Param("eventId"), userID)
	if err != nil {
		metrics.JoinRejectionsTotal.WithLabelValues(joinRejectionReason(err)).Inc()
		return err
	}

	metrics.JoinsTotal.Inc()
	return c.JSON(http.StatusOK, eventResponse{
		Success: true,
		Message: "successfully joined the event",
		Event:   event,
	})
}

func joinRejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEventFull):
		return "full"
	case errors.Is(err, domain.ErrEventClosed):
		return "closed"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "duplicate"
	case errors.Is(err, domain.ErrEventNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Leave handles POST /event/leave/:eventId.
//
// @Summary      Leave an event
// @Tags         event
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string  true  "Event ID"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /event/leave/{eventId} [post]
func (h *EventHandler) Leave(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Leave(c.Request().Context(), c.Param("eventId"), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "successfully left the event"})
}

// UpcomingForUser handles GET /event/get-all-event — future events the
// caller organizes or attends, soonest first.
//
// @Summary      List the caller's upcoming events
// @Tags         event
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  eventListResponse
// @Failure      401  {object}  errorResponse
// @Router       /event/get-all-event [get]
func (h *EventHandler) UpcomingForUser(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	events, err := h.service.ListUpcomingForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, eventListResponse{
		Success: true,
		Message: "upcoming events retrieved successfully",
		Events:  events,
	})
}

// Past handles GET /event/get-past-event.
//
// @Summary      List past events
// @Tags         event
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Event
// @Failure      401  {object}  errorResponse
// @Router       /event/get-past-event [get]
func (h *EventHandler) Past(c echo.Context) error {
	events, err := h.service.ListPast(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// AllUpcoming handles GET /event/get-all-events — the public listing with
// organizer and attendee identities resolved. No auth required.
//
// @Summary      List all upcoming events (public)
// @Tags         event
// @Produce      json
// @Success      200  {object}  publicEventListResponse
// @Router       /event/get-all-events [get]
func (h *EventHandler) AllUpcoming(c echo.Context) error {
	events, err := h.service.ListAllUpcomingPublic(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicEventListResponse{Events: events})
}

func parseEventDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
