package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ContactInfo string `json:"contactInfo"`
}

// UpdateTicketRequest carries optional field edits.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ContactInfo *string `json:"contactInfo"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AcceptedByID string `json:"acceptedById"`
}

// TicketResponse mirrors the original API shape.
type TicketResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ContactInfo  string              `json:"contactInfo"`
	Status       domain.TicketStatus `json:"status"`
	UserID       string              `json:"userId"`
	AcceptedByID *string             `json:"acceptedById"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}
