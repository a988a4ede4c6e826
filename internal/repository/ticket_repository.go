package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/site-api/internal/domain"
)

// TicketUpdate is the allow-listed set of staff-patchable fields. Nil means
// leave unchanged.
type TicketUpdate struct {
	Name    *string
	Email   *string
	Subject *string
	Status  *domain.TicketStatus
}

// TicketRepository encapsulates support ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	// GetByCodeAndEmail expects inputs already normalized (code uppercase,
	// email lowercase).
	GetByCodeAndEmail(ctx context.Context, code, email string) (*domain.SupportTicket, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	Update(ctx context.Context, id string, update TicketUpdate) error
	AppendReply(ctx context.Context, ticketID string, reply *domain.Reply) error
	ListReplies(ctx context.Context, ticketID string) ([]domain.Reply, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = "id, ticket_code, name, email, subject, message, status, user_id, created_at"

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        INSERT INTO tickets (ticket_code, name, email, subject, message, status, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketCode,
		ticket.Name,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByCodeAndEmail(ctx context.Context, code, email string) (*domain.SupportTicket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_code=$1 AND email=$2`
	return r.fetchSingle(ctx, query, code, email)
}

func (r *ticketRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE ticket_code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.Name,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Message,
		&ticket.Status,
		&ticket.UserID,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	args := []any{}
	if status != nil {
		query += ` WHERE status=$1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportTicket
	for rows.Next() {
		var ticket domain.SupportTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketCode,
			&ticket.Name,
			&ticket.Email,
			&ticket.Subject,
			&ticket.Message,
			&ticket.Status,
			&ticket.UserID,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, update TicketUpdate) error {
	const query = `
        UPDATE tickets SET
            name    = COALESCE($1, name),
            email   = COALESCE($2, email),
            subject = COALESCE($3, subject),
            status  = COALESCE($4, status)
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		update.Name,
		update.Email,
		update.Subject,
		update.Status,
		id,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AppendReply(ctx context.Context, ticketID string, reply *domain.Reply) error {
	const query = `
        INSERT INTO ticket_replies (ticket_id, message, sent_by, is_from_user)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sent_at`
	return r.pool.QueryRow(ctx, query,
		ticketID,
		reply.Message,
		reply.SentBy,
		reply.IsFromUser,
	).Scan(&reply.ID, &reply.SentAt)
}

func (r *ticketRepository) ListReplies(ctx context.Context, ticketID string) ([]domain.Reply, error) {
	const query = `
        SELECT id, message, sent_by, is_from_user, sent_at
        FROM ticket_replies WHERE ticket_id=$1 ORDER BY sent_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReplies(rows)
}
