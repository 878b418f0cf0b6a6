package authz

import (
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var allStatuses = []domain.TicketStatus{
	domain.TicketStatusPending,
	domain.TicketStatusAccepted,
	domain.TicketStatusResolved,
	domain.TicketStatusRejected,
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{"pending to accepted", domain.TicketStatusPending, domain.TicketStatusAccepted, true},
		{"pending to rejected", domain.TicketStatusPending, domain.TicketStatusRejected, true},
		{"pending to resolved skips accepted", domain.TicketStatusPending, domain.TicketStatusResolved, false},
		{"accepted to resolved", domain.TicketStatusAccepted, domain.TicketStatusResolved, true},
		{"accepted to rejected", domain.TicketStatusAccepted, domain.TicketStatusRejected, true},
		{"accepted back to pending", domain.TicketStatusAccepted, domain.TicketStatusPending, false},
		{"resolved is terminal", domain.TicketStatusResolved, domain.TicketStatusAccepted, false},
		{"rejected is terminal", domain.TicketStatusRejected, domain.TicketStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestNoSelfLoops(t *testing.T) {
	for _, status := range allStatuses {
		if CanTransition(status, status) {
			t.Errorf("CanTransition(%s, %s) must be false", status, status)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, terminal := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusRejected} {
		if !IsTerminal(terminal) {
			t.Errorf("IsTerminal(%s) = false, want true", terminal)
		}
		for _, next := range allStatuses {
			if CanTransition(terminal, next) {
				t.Errorf("terminal status %s must not transition to %s", terminal, next)
			}
		}
	}
}

// Every walk along permitted edges from PENDING ends in a terminal status
// and never leaves it.
func TestAllPathsEndTerminal(t *testing.T) {
	var walk func(t *testing.T, current domain.TicketStatus, depth int)
	walk = func(t *testing.T, current domain.TicketStatus, depth int) {
		if depth > len(allStatuses) {
			t.Fatalf("lifecycle contains a cycle through %s", current)
		}
		next := NextStatuses(current)
		if len(next) == 0 {
			if !IsTerminal(current) {
				t.Errorf("status %s has no exits but is not terminal", current)
			}
			return
		}
		for _, n := range next {
			walk(t, n, depth+1)
		}
	}
	walk(t, domain.TicketStatusPending, 0)
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := NextStatuses(domain.TicketStatusPending)
	if len(next) != 2 {
		t.Fatalf("NextStatuses(PENDING) returned %d entries, want 2", len(next))
	}
	next[0] = domain.TicketStatusResolved
	if CanTransition(domain.TicketStatusPending, domain.TicketStatusResolved) {
		t.Error("mutating NextStatuses result leaked into the transition table")
	}
}
