package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService is the authorization and lifecycle engine. Every operation
// takes the acting user explicitly; rules are evaluated in a fixed order:
// actor present, role capability, ownership where required, transition
// validity, then the mutation. A rejected operation leaves no side effects.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	ContactInfo string
}

// TicketFieldPatch carries optional field edits; nil means untouched.
type TicketFieldPatch struct {
	Title       *string
	Description *string
	ContactInfo *string
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Status *domain.TicketStatus
	SortBy repository.TicketSort
	Order  repository.SortOrder
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a new ticket for the acting end-user. Only USER actors
// may create; the actor becomes the immutable ticket owner and the ticket
// starts in PENDING with no assignee.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpCreateTicket); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	contactInfo := strings.TrimSpace(input.ContactInfo)

	details := map[string]any{}
	if title == "" {
		details["title"] = "title is required"
	}
	if description == "" {
		details["description"] = "description is required"
	}
	if contactInfo == "" {
		details["contactInfo"] = "contact information is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", details)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		ContactInfo: contactInfo,
		Status:      domain.TicketStatusPending,
		UserID:      actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			ContactInfo: ticket.ContactInfo,
		},
	})
	return ticket, nil
}

// UpdateFields edits title/description/contactInfo. End-users may only edit
// tickets they created; employees and admins may edit any ticket. Provided
// fields must be non-empty after trimming.
func (s *TicketService) UpdateFields(ctx context.Context, actor *domain.User, ticketID string, patch TicketFieldPatch) (*domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpEditTicket); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if authz.RequiresOwnership(actor.Role, authz.OpEditTicket) && !authz.Owns(actor, ticket) {
		return nil, apperrors.NewForbidden("only the ticket creator may edit it")
	}

	changed, details := applyPatch(ticket, patch)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("fields must not be empty", details)
	}
	if len(changed) == 0 {
		return nil, apperrors.NewValidationError("no fields provided", nil)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload:  events.TicketUpdatedPayload{ChangedFields: changed},
	})
	return ticket, nil
}

// ChangeStatus moves a ticket along the lifecycle. Only employees and admins
// may change status, and only along permitted transitions. Requesting the
// current status is a no-op: the ticket is returned untouched.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpChangeStatus); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if next == ticket.Status {
		return ticket, nil
	}
	if !authz.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(next))
	}

	oldStatus := ticket.Status
	ticket.Status = next
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// Assign sets the ticket's assignee to the given employee. Admin only.
// Assignment is orthogonal to status: any ticket may be (re)assigned and the
// status is left untouched.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, employeeID string) (*domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpAssignTicket); err != nil {
		return nil, err
	}

	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, apperrors.NewValidationError("acceptedById is required", map[string]any{
			"acceptedById": "acceptedById is required",
		})
	}

	assignee, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"user_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	if assignee.Role != domain.RoleEmployee {
		return nil, apperrors.NewValidationError("assignee must be an employee", map[string]any{
			"acceptedById": "user is not an employee",
		})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	previous := ticket.AcceptedByID
	ticket.AcceptedByID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			AcceptedByID: assignee.ID,
			PreviousID:   previous,
		},
	})
	return ticket, nil
}

// List returns tickets matching the filter. Any authenticated role may list;
// sorting defaults to updatedAt descending.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpViewTickets); err != nil {
		return nil, err
	}
	if filter.SortBy == "" {
		filter.SortBy = repository.SortByUpdatedAt
	}
	if filter.Order == "" {
		filter.Order = repository.OrderDesc
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		Status: filter.Status,
		SortBy: filter.SortBy,
		Order:  filter.Order,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a single ticket for any authenticated caller.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if err := s.authorize(actor, authz.OpViewTickets); err != nil {
		return nil, err
	}
	return s.getTicket(ctx, ticketID)
}

// ListEmployees returns the employee directory for the assignment picker.
func (s *TicketService) ListEmployees(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := s.authorize(actor, authz.OpListEmployees); err != nil {
		return nil, err
	}
	employees, err := s.users.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

func (s *TicketService) authorize(actor *domain.User, op authz.Operation) error {
	if actor == nil {
		return apperrors.NewUnauthorized("actor required")
	}
	if !authz.Allowed(actor.Role, op) {
		return apperrors.NewForbidden("operation not permitted for role")
	}
	return nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// applyPatch mutates ticket in place and reports which fields changed and
// which provided values were empty after trimming.
func applyPatch(ticket *domain.Ticket, patch TicketFieldPatch) ([]string, map[string]any) {
	changed := []string{}
	details := map[string]any{}

	if patch.Title != nil {
		if v := strings.TrimSpace(*patch.Title); v == "" {
			details["title"] = "title must not be empty"
		} else {
			ticket.Title = v
			changed = append(changed, "title")
		}
	}
	if patch.Description != nil {
		if v := strings.TrimSpace(*patch.Description); v == "" {
			details["description"] = "description must not be empty"
		} else {
			ticket.Description = v
			changed = append(changed, "description")
		}
	}
	if patch.ContactInfo != nil {
		if v := strings.TrimSpace(*patch.ContactInfo); v == "" {
			details["contactInfo"] = "contact information must not be empty"
		} else {
			ticket.ContactInfo = v
			changed = append(changed, "contactInfo")
		}
	}
	return changed, details
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{ID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
