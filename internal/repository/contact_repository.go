package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/site-api/internal/domain"
)

// ContactRepository encapsulates contact submission persistence.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.ContactSubmission) error
	GetByID(ctx context.Context, id string) (*domain.ContactSubmission, error)
	List(ctx context.Context, status *domain.ContactStatus) ([]domain.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error
	SetLastEmailID(ctx context.Context, id, emailID string) error
	// FindByLastEmailID matches a contact by the provider id of its most
	// recent outbound email.
	FindByLastEmailID(ctx context.Context, emailID string) (*domain.ContactSubmission, error)
	// MostRecentByEmail is the inbound-webhook fallback: the newest contact
	// created with the given sender address.
	MostRecentByEmail(ctx context.Context, email string) (*domain.ContactSubmission, error)
	// AppendReply inserts a reply row. Appends are atomic at the store level,
	// so concurrent replies to the same contact all persist.
	AppendReply(ctx context.Context, contactID string, reply *domain.Reply) error
	ListReplies(ctx context.Context, contactID string) ([]domain.Reply, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = "id, name, email, message, status, last_email_id, created_at"

func (r *contactRepository) Create(ctx context.Context, contact *domain.ContactSubmission) error {
	const query = `
        INSERT INTO contacts (name, email, message, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.Email,
		contact.Message,
		contact.Status,
	).Scan(&contact.ID, &contact.CreatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.ContactSubmission, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *contactRepository) FindByLastEmailID(ctx context.Context, emailID string) (*domain.ContactSubmission, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE last_email_id=$1`
	return r.fetchSingle(ctx, query, emailID)
}

func (r *contactRepository) MostRecentByEmail(ctx context.Context, email string) (*domain.ContactSubmission, error) {
	const query = `SELECT ` + contactColumns + `
        FROM contacts WHERE email=$1 ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, email)
}

func (r *contactRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ContactSubmission, error) {
	var contact domain.ContactSubmission
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Email,
		&contact.Message,
		&contact.Status,
		&contact.LastEmailID,
		&contact.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) List(ctx context.Context, status *domain.ContactStatus) ([]domain.ContactSubmission, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
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

	var result []domain.ContactSubmission
	for rows.Next() {
		var contact domain.ContactSubmission
		if err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Email,
			&contact.Message,
			&contact.Status,
			&contact.LastEmailID,
			&contact.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE contacts SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) SetLastEmailID(ctx context.Context, id, emailID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE contacts SET last_email_id=$1 WHERE id=$2`, emailID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) AppendReply(ctx context.Context, contactID string, reply *domain.Reply) error {
	const query = `
        INSERT INTO contact_replies (contact_id, message, sent_by, is_from_user)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sent_at`
	return r.pool.QueryRow(ctx, query,
		contactID,
		reply.Message,
		reply.SentBy,
		reply.IsFromUser,
	).Scan(&reply.ID, &reply.SentAt)
}

func (r *contactRepository) ListReplies(ctx context.Context, contactID string) ([]domain.Reply, error) {
	const query = `
        SELECT id, message, sent_by, is_from_user, sent_at
        FROM contact_replies WHERE contact_id=$1 ORDER BY sent_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReplies(rows)
}

func scanReplies(rows pgx.Rows) ([]domain.Reply, error) {
	var result []domain.Reply
	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(
			&reply.ID,
			&reply.Message,
			&reply.SentBy,
			&reply.IsFromUser,
			&reply.SentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}
