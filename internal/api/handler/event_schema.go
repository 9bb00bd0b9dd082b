package handler

import (
	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

type deleteEventRequest struct {
	ID string `json:"id"`
}

type eventResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Event   *domain.Event `json:"event"`
}

type eventListResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Events  []*domain.Event `json:"events"`
}

type publicEventListResponse struct {
	Events []ports.PublicEvent `json:"events"`
}
