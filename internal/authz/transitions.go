package authz

import "github.com/spec-kit/helpdesk-service/internal/domain"

// transitions is the directed edge set of the ticket lifecycle. Statuses
// absent from a value slice are unreachable from that key; RESOLVED and
// REJECTED have no exits and are therefore terminal.
var transitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:  {domain.TicketStatusAccepted, domain.TicketStatusRejected},
	domain.TicketStatusAccepted: {domain.TicketStatusResolved, domain.TicketStatusRejected},
	domain.TicketStatusResolved: {},
	domain.TicketStatusRejected: {},
}

// CanTransition reports whether moving a ticket from current to next is a
// permitted lifecycle edge. Self-loops are not edges.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range transitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from current. The result is a
// copy; callers may not mutate the table through it.
func NextStatuses(current domain.TicketStatus) []domain.TicketStatus {
	return append([]domain.TicketStatus{}, transitions[current]...)
}

// IsTerminal reports whether no further status mutation is permitted.
func IsTerminal(status domain.TicketStatus) bool {
	return len(transitions[status]) == 0
}
