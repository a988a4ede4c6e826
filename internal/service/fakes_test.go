package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/mail"
	"github.com/spec-kit/site-api/internal/repository"
)

// In-memory repository fakes. Mutex-guarded so tests can exercise concurrent
// appends.

type fakeContactRepo struct {
	mu       sync.Mutex
	seq      int
	contacts map[string]*domain.ContactSubmission
	replies  map[string][]domain.Reply
	order    []string
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{
		contacts: make(map[string]*domain.ContactSubmission),
		replies:  make(map[string][]domain.Reply),
	}
}

func (f *fakeContactRepo) Create(_ context.Context, contact *domain.ContactSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	contact.ID = fmt.Sprintf("contact-%d", f.seq)
	contact.CreatedAt = time.Now()
	clone := *contact
	f.contacts[contact.ID] = &clone
	f.order = append(f.order, contact.ID)
	return nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (*domain.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *contact
	return &clone, nil
}

func (f *fakeContactRepo) List(_ context.Context, status *domain.ContactStatus) ([]domain.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.ContactSubmission
	for i := len(f.order) - 1; i >= 0; i-- {
		contact := f.contacts[f.order[i]]
		if status != nil && contact.Status != *status {
			continue
		}
		result = append(result, *contact)
	}
	return result, nil
}

func (f *fakeContactRepo) UpdateStatus(_ context.Context, id string, status domain.ContactStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	contact.Status = status
	return nil
}

func (f *fakeContactRepo) SetLastEmailID(_ context.Context, id, emailID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	contact.LastEmailID = &emailID
	return nil
}

func (f *fakeContactRepo) FindByLastEmailID(_ context.Context, emailID string) (*domain.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, contact := range f.contacts {
		if contact.LastEmailID != nil && *contact.LastEmailID == emailID {
			clone := *contact
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeContactRepo) MostRecentByEmail(_ context.Context, email string) (*domain.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.order) - 1; i >= 0; i-- {
		contact := f.contacts[f.order[i]]
		if contact.Email == email {
			clone := *contact
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeContactRepo) AppendReply(_ context.Context, contactID string, reply *domain.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[contactID]; !ok {
		return pgx.ErrNoRows
	}
	f.seq++
	reply.ID = fmt.Sprintf("reply-%d", f.seq)
	reply.SentAt = time.Now()
	f.replies[contactID] = append(f.replies[contactID], *reply)
	return nil
}

func (f *fakeContactRepo) ListReplies(_ context.Context, contactID string) ([]domain.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Reply{}, f.replies[contactID]...), nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.SupportTicket
	replies map[string][]domain.Reply
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*domain.SupportTicket),
		replies: make(map[string][]domain.Reply),
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.SupportTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tickets {
		if existing.TicketCode == ticket.TicketCode {
			return fmt.Errorf("duplicate ticket_code %s", ticket.TicketCode)
		}
	}
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = time.Now()
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) GetByCodeAndEmail(_ context.Context, code, email string) (*domain.SupportTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.TicketCode == code && ticket.Email == email {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.TicketCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTicketRepo) List(_ context.Context, status *domain.TicketStatus) ([]domain.SupportTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.SupportTicket
	for _, ticket := range f.tickets {
		if status != nil && ticket.Status != *status {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, id string, update repository.TicketUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Name != nil {
		ticket.Name = *update.Name
	}
	if update.Email != nil {
		ticket.Email = *update.Email
	}
	if update.Subject != nil {
		ticket.Subject = *update.Subject
	}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	return nil
}

func (f *fakeTicketRepo) AppendReply(_ context.Context, ticketID string, reply *domain.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticketID]; !ok {
		return pgx.ErrNoRows
	}
	f.seq++
	reply.ID = fmt.Sprintf("reply-%d", f.seq)
	reply.SentAt = time.Now()
	f.replies[ticketID] = append(f.replies[ticketID], *reply)
	return nil
}

func (f *fakeTicketRepo) ListReplies(_ context.Context, ticketID string) ([]domain.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Reply{}, f.replies[ticketID]...), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return fmt.Errorf("duplicate user email %s", user.Email)
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	seq    int
	admins map[string]*domain.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*domain.Admin)}
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	admin.ID = fmt.Sprintf("admin-%d", f.seq)
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	clone := *admin
	f.admins[admin.ID] = &clone
	return nil
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	admin, ok := f.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *admin
	return &clone, nil
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, admin := range f.admins {
		if admin.Email == email {
			clone := *admin
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAdminRepo) List(_ context.Context) ([]domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Admin, 0, len(f.admins))
	for _, admin := range f.admins {
		result = append(result, *admin)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeAdminRepo) UpdateProfile(_ context.Context, id, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	admin, ok := f.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	admin.Name = name
	admin.Email = email
	admin.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAdminRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	admin, ok := f.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	admin.PasswordHash = passwordHash
	admin.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAdminRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.admins[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.admins, id)
	return nil
}

func (f *fakeAdminRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admins), nil
}

// fakeMailer records sends and can be flipped to fail.
type fakeMailer struct {
	mu   sync.Mutex
	seq  int
	sent []mail.Message
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", fmt.Errorf("provider unavailable")
	}
	f.seq++
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("em_%d", f.seq), nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailer) lastMessage() mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeMailer) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}
