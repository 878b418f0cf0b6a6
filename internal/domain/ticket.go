package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusAccepted TicketStatus = "ACCEPTED"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusRejected TicketStatus = "REJECTED"
)

// ParseTicketStatus maps a raw string onto a known status.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusPending, TicketStatusAccepted, TicketStatusResolved, TicketStatusRejected:
		return TicketStatus(raw), true
	default:
		return "", false
	}
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	ContactInfo  string
	Status       TicketStatus
	UserID       string
	AcceptedByID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
