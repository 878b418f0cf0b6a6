package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketSort names the column a listing is ordered by.
type TicketSort string

const (
	SortByCreatedAt TicketSort = "createdAt"
	SortByUpdatedAt TicketSort = "updatedAt"
)

// SortOrder is the listing direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// TicketFilter captures listing parameters. A nil Status means all statuses.
type TicketFilter struct {
	Status *domain.TicketStatus
	SortBy TicketSort
	Order  SortOrder
}

// sortColumns whitelists ORDER BY targets; anything else falls back to the
// default so request input never reaches the SQL text.
var sortColumns = map[TicketSort]string{
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, contact_info, status, user_id, accepted_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.ContactInfo,
		ticket.Status,
		ticket.UserID,
		ticket.AcceptedByID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, contact_info=$3, status=$4,
            accepted_by_id=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.ContactInfo,
		ticket.Status,
		ticket.AcceptedByID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, contact_info, status, user_id, accepted_by_id,
               created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.ContactInfo,
		&ticket.Status,
		&ticket.UserID,
		&ticket.AcceptedByID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, contact_info, status, user_id, accepted_by_id,
                    created_at, updated_at
             FROM tickets`
	args := []any{}
	where := ""
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = " WHERE status=$1"
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[SortByUpdatedAt]
	}
	direction := "DESC"
	if filter.Order == OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf("%s%s ORDER BY %s %s", base, where, column, direction)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.ContactInfo,
			&ticket.Status,
			&ticket.UserID,
			&ticket.AcceptedByID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
