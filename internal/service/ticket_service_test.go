package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// fakeTicketRepo mimics the Postgres repository including its timestamp
// behavior: Create stamps both timestamps, Update refreshes updated_at.
type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("t%d", r.nextID)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket := *stored
	return &ticket, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		result = append(result, *stored)
	}
	key := func(t domain.Ticket) time.Time {
		if filter.SortBy == repository.SortByCreatedAt {
			return t.CreatedAt
		}
		return t.UpdatedAt
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			before := key(result[i]).Before(key(result[j]))
			if (filter.Order == repository.OrderAsc && !before) || (filter.Order != repository.OrderAsc && before) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

// seed stores a ticket bypassing Create so tests can control timestamps.
func (r *fakeTicketRepo) seed(ticket domain.Ticket) {
	r.tickets[ticket.ID] = &ticket
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	return result, nil
}

var (
	endUser  = domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	otherEnd = domain.User{ID: "u2", Username: "bob", Role: domain.RoleUser}
	employee = domain.User{ID: "emp1", Username: "carol", Role: domain.RoleEmployee}
	empTwo   = domain.User{ID: "emp2", Username: "dave", Role: domain.RoleEmployee}
	admin    = domain.User{ID: "adm1", Username: "erin", Role: domain.RoleAdmin}
)

func newTestService() (*TicketService, *fakeTicketRepo) {
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo(endUser, otherEnd, employee, empTwo, admin)
	svc := NewTicketService(TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return svc, tickets
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

func validInput() TicketCreateInput {
	return TicketCreateInput{
		Title:       "Printer broken",
		Description: "The office printer jams on every job",
		ContactInfo: "alice@example.com",
	}
}

func TestCreateTicket(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, &endUser, validInput())
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Errorf("new ticket status = %s, want PENDING", ticket.Status)
	}
	if ticket.UserID != endUser.ID {
		t.Errorf("new ticket userId = %s, want %s", ticket.UserID, endUser.ID)
	}
	if ticket.AcceptedByID != nil {
		t.Errorf("new ticket acceptedById = %v, want nil", *ticket.AcceptedByID)
	}
	if ticket.ID == "" {
		t.Error("new ticket has no id")
	}
}

func TestCreateTicketAuthorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTicket(ctx, nil, validInput()); err != nil {
		assertCode(t, err, "UNAUTHORIZED")
	} else {
		t.Fatal("nil actor must not create tickets")
	}
	_, err := svc.CreateTicket(ctx, &employee, validInput())
	assertCode(t, err, "FORBIDDEN")
	_, err = svc.CreateTicket(ctx, &admin, validInput())
	assertCode(t, err, "FORBIDDEN")
}

func TestCreateTicketValidation(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()

	input := validInput()
	input.Title = "   "
	_, err := svc.CreateTicket(ctx, &endUser, input)
	assertCode(t, err, "VALIDATION_FAILED")
	var domainErr *apperrors.DomainError
	errors.As(err, &domainErr)
	if _, ok := domainErr.Details["title"]; !ok {
		t.Errorf("validation details must name title, got %v", domainErr.Details)
	}

	_, err = svc.CreateTicket(ctx, &endUser, TicketCreateInput{})
	assertCode(t, err, "VALIDATION_FAILED")
	errors.As(err, &domainErr)
	if len(domainErr.Details) != 3 {
		t.Errorf("expected 3 missing fields, got %v", domainErr.Details)
	}

	if len(tickets.tickets) != 0 {
		t.Error("rejected create must leave no ticket behind")
	}
}

func TestUpdateFields(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)
	tickets.seed(domain.Ticket{
		ID: "t1", Title: "Printer broken", Description: "jams", ContactInfo: "alice@example.com",
		Status: domain.TicketStatusPending, UserID: endUser.ID, CreatedAt: old, UpdatedAt: old,
	})

	newTitle := "Printer totally broken"
	ticket, err := svc.UpdateFields(ctx, &endUser, "t1", TicketFieldPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateFields by owner: %v", err)
	}
	if ticket.Title != newTitle {
		t.Errorf("title = %q, want %q", ticket.Title, newTitle)
	}
	if !ticket.UpdatedAt.After(old) {
		t.Error("updatedAt must be refreshed by an edit")
	}
	if ticket.Description != "jams" || ticket.ContactInfo != "alice@example.com" {
		t.Error("untouched fields must survive a partial patch")
	}
}

func TestUpdateFieldsOwnership(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Title: "a", Description: "b", ContactInfo: "c",
		Status: domain.TicketStatusPending, UserID: endUser.ID})

	title := "hijacked"
	_, err := svc.UpdateFields(ctx, &otherEnd, "t1", TicketFieldPatch{Title: &title})
	assertCode(t, err, "FORBIDDEN")

	// Staff edit any ticket regardless of ownership.
	if _, err := svc.UpdateFields(ctx, &employee, "t1", TicketFieldPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateFields by employee: %v", err)
	}
	if _, err := svc.UpdateFields(ctx, &admin, "t1", TicketFieldPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateFields by admin: %v", err)
	}
}

func TestUpdateFieldsValidation(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Title: "a", Description: "b", ContactInfo: "c",
		Status: domain.TicketStatusPending, UserID: endUser.ID})

	empty := "  "
	_, err := svc.UpdateFields(ctx, &endUser, "t1", TicketFieldPatch{Description: &empty})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.UpdateFields(ctx, &endUser, "t1", TicketFieldPatch{})
	assertCode(t, err, "VALIDATION_FAILED")

	title := "x"
	_, err = svc.UpdateFields(ctx, &endUser, "missing", TicketFieldPatch{Title: &title})
	assertCode(t, err, "NOT_FOUND")

	if stored, _ := tickets.GetByID(ctx, "t1"); stored.Description != "b" {
		t.Error("rejected edit must not change the stored ticket")
	}
}

func TestChangeStatus(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Title: "a", Description: "b", ContactInfo: "c",
		Status: domain.TicketStatusPending, UserID: endUser.ID})

	ticket, err := svc.ChangeStatus(ctx, &employee, "t1", domain.TicketStatusAccepted)
	if err != nil {
		t.Fatalf("ChangeStatus PENDING->ACCEPTED: %v", err)
	}
	if ticket.Status != domain.TicketStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", ticket.Status)
	}

	_, err = svc.ChangeStatus(ctx, &employee, "t1", domain.TicketStatusPending)
	assertCode(t, err, "INVALID_TRANSITION")

	ticket, err = svc.ChangeStatus(ctx, &admin, "t1", domain.TicketStatusResolved)
	if err != nil {
		t.Fatalf("ChangeStatus ACCEPTED->RESOLVED: %v", err)
	}
	if ticket.Status != domain.TicketStatusResolved {
		t.Errorf("status = %s, want RESOLVED", ticket.Status)
	}

	// Terminal: nothing moves a resolved ticket.
	for _, next := range []domain.TicketStatus{
		domain.TicketStatusPending, domain.TicketStatusAccepted, domain.TicketStatusRejected,
	} {
		_, err := svc.ChangeStatus(ctx, &admin, "t1", next)
		assertCode(t, err, "INVALID_TRANSITION")
	}
}

func TestChangeStatusAuthorization(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusPending, UserID: endUser.ID})

	_, err := svc.ChangeStatus(ctx, &endUser, "t1", domain.TicketStatusAccepted)
	assertCode(t, err, "FORBIDDEN")

	// A user cannot even no-op its own ticket's status.
	_, err = svc.ChangeStatus(ctx, &endUser, "t1", domain.TicketStatusPending)
	assertCode(t, err, "FORBIDDEN")

	_, err = svc.ChangeStatus(ctx, &employee, "missing", domain.TicketStatusAccepted)
	assertCode(t, err, "NOT_FOUND")
}

func TestChangeStatusSkippingAcceptedFails(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusPending, UserID: endUser.ID})

	_, err := svc.ChangeStatus(ctx, &employee, "t1", domain.TicketStatusResolved)
	assertCode(t, err, "INVALID_TRANSITION")
	_, err = svc.ChangeStatus(ctx, &admin, "t1", domain.TicketStatusResolved)
	assertCode(t, err, "INVALID_TRANSITION")

	if stored, _ := tickets.GetByID(ctx, "t1"); stored.Status != domain.TicketStatusPending {
		t.Error("rejected transition must leave the ticket unchanged")
	}
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusAccepted, UserID: endUser.ID,
		CreatedAt: old, UpdatedAt: old})

	ticket, err := svc.ChangeStatus(ctx, &employee, "t1", domain.TicketStatusAccepted)
	if err != nil {
		t.Fatalf("same-status request: %v", err)
	}
	if ticket.Status != domain.TicketStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", ticket.Status)
	}
	if !ticket.UpdatedAt.Equal(old) {
		t.Error("no-op status request must not refresh updatedAt")
	}
}

func TestAssign(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusAccepted, UserID: endUser.ID})

	ticket, err := svc.Assign(ctx, &admin, "t1", employee.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ticket.AcceptedByID == nil || *ticket.AcceptedByID != employee.ID {
		t.Errorf("acceptedById = %v, want %s", ticket.AcceptedByID, employee.ID)
	}
	if ticket.Status != domain.TicketStatusAccepted {
		t.Errorf("assignment changed status to %s", ticket.Status)
	}

	// Reassignment replaces the previous assignee.
	ticket, err = svc.Assign(ctx, &admin, "t1", empTwo.ID)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if *ticket.AcceptedByID != empTwo.ID {
		t.Errorf("acceptedById = %s, want %s", *ticket.AcceptedByID, empTwo.ID)
	}
}

func TestAssignAuthorizationAndValidation(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusPending, UserID: endUser.ID})

	_, err := svc.Assign(ctx, &employee, "t1", empTwo.ID)
	assertCode(t, err, "FORBIDDEN")
	_, err = svc.Assign(ctx, &endUser, "t1", empTwo.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = svc.Assign(ctx, &admin, "t1", "  ")
	assertCode(t, err, "VALIDATION_FAILED")
	_, err = svc.Assign(ctx, &admin, "t1", "ghost")
	assertCode(t, err, "NOT_FOUND")
	_, err = svc.Assign(ctx, &admin, "t1", otherEnd.ID)
	assertCode(t, err, "VALIDATION_FAILED")
	_, err = svc.Assign(ctx, &admin, "missing", employee.ID)
	assertCode(t, err, "NOT_FOUND")

	if stored, _ := tickets.GetByID(ctx, "t1"); stored.AcceptedByID != nil {
		t.Error("rejected assignment must leave the ticket unassigned")
	}
}

func TestList(t *testing.T) {
	svc, tickets := newTestService()
	ctx := context.Background()
	base := time.Now().Add(-3 * time.Hour)
	tickets.seed(domain.Ticket{ID: "t1", Status: domain.TicketStatusPending, UserID: endUser.ID,
		CreatedAt: base, UpdatedAt: base.Add(2 * time.Hour)})
	tickets.seed(domain.Ticket{ID: "t2", Status: domain.TicketStatusAccepted, UserID: endUser.ID,
		CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)})
	tickets.seed(domain.Ticket{ID: "t3", Status: domain.TicketStatusPending, UserID: otherEnd.ID,
		CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)})

	// Default: all statuses, updatedAt descending.
	result, err := svc.List(ctx, &endUser, TicketListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("got %d tickets, want 3", len(result))
	}
	if result[0].ID != "t3" || result[1].ID != "t1" || result[2].ID != "t2" {
		t.Errorf("default order = %s,%s,%s; want t3,t1,t2", result[0].ID, result[1].ID, result[2].ID)
	}

	pending := domain.TicketStatusPending
	result, err = svc.List(ctx, &employee, TicketListFilter{Status: &pending})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d pending tickets, want 2", len(result))
	}

	result, err = svc.List(ctx, &admin, TicketListFilter{
		SortBy: repository.SortByCreatedAt,
		Order:  repository.OrderAsc,
	})
	if err != nil {
		t.Fatalf("List sorted: %v", err)
	}
	if result[0].ID != "t1" || result[2].ID != "t3" {
		t.Errorf("createdAt asc order wrong: %s..%s", result[0].ID, result[2].ID)
	}

	_, err = svc.List(ctx, nil, TicketListFilter{})
	assertCode(t, err, "UNAUTHORIZED")
}

func TestListEmployees(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	employees, err := svc.ListEmployees(ctx, &admin)
	if err != nil {
		t.Fatalf("ListEmployees: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("got %d employees, want 2", len(employees))
	}
	for _, e := range employees {
		if e.Role != domain.RoleEmployee {
			t.Errorf("non-employee %s in directory", e.ID)
		}
	}

	_, err = svc.ListEmployees(ctx, &employee)
	assertCode(t, err, "FORBIDDEN")
	_, err = svc.ListEmployees(ctx, &endUser)
	assertCode(t, err, "FORBIDDEN")
}

// The end-to-end scenario: a user reports a broken printer, an employee
// accepts it, a bogus backwards move fails, and an admin assigns it without
// touching the status.
func TestTicketWorkflow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, &endUser, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending || ticket.UserID != "u1" {
		t.Fatalf("created ticket = %+v", ticket)
	}

	ticket, err = svc.ChangeStatus(ctx, &employee, ticket.ID, domain.TicketStatusAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if ticket.Status != domain.TicketStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", ticket.Status)
	}

	_, err = svc.ChangeStatus(ctx, &employee, ticket.ID, domain.TicketStatusPending)
	assertCode(t, err, "INVALID_TRANSITION")

	ticket, err = svc.Assign(ctx, &admin, ticket.ID, "emp2")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if ticket.AcceptedByID == nil || *ticket.AcceptedByID != "emp2" {
		t.Fatalf("acceptedById = %v, want emp2", ticket.AcceptedByID)
	}
	if ticket.Status != domain.TicketStatusAccepted {
		t.Fatalf("assignment changed status to %s", ticket.Status)
	}
}
