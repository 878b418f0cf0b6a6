// Package authz is the pure decision core for ticket operations: a single
// capability table mapping roles to operations, the status transition table,
// and the ownership rule. Both the service layer and the HTTP route guards
// consult it, so the rules live in exactly one place. No I/O happens here.
package authz

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Operation identifies an action an actor can attempt.
type Operation string

const (
	OpCreateTicket  Operation = "ticket:create"
	OpEditTicket    Operation = "ticket:edit"
	OpChangeStatus  Operation = "ticket:change_status"
	OpAssignTicket  Operation = "ticket:assign"
	OpViewTickets   Operation = "ticket:view"
	OpListEmployees Operation = "user:list_employees"
)

var capabilities = map[Operation]map[domain.Role]bool{
	OpCreateTicket: {
		domain.RoleUser: true,
	},
	OpEditTicket: {
		domain.RoleUser:     true, // ownership enforced separately
		domain.RoleEmployee: true,
		domain.RoleAdmin:    true,
	},
	OpChangeStatus: {
		domain.RoleEmployee: true,
		domain.RoleAdmin:    true,
	},
	OpAssignTicket: {
		domain.RoleAdmin: true,
	},
	OpViewTickets: {
		domain.RoleUser:     true,
		domain.RoleEmployee: true,
		domain.RoleAdmin:    true,
	},
	OpListEmployees: {
		domain.RoleAdmin: true,
	},
}

// Allowed reports whether the role holds the capability for the operation.
func Allowed(role domain.Role, op Operation) bool {
	return capabilities[op][role]
}

// RequiresOwnership reports whether the role may perform the operation only
// on tickets it created. Today that is end-users editing ticket fields;
// employees and admins edit any ticket.
func RequiresOwnership(role domain.Role, op Operation) bool {
	return op == OpEditTicket && role == domain.RoleUser
}

// Owns reports whether the actor created the ticket.
func Owns(actor *domain.User, ticket *domain.Ticket) bool {
	return actor != nil && ticket != nil && ticket.UserID == actor.ID
}
