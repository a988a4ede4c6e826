package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/site-api/internal/config"
	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/events"
	"github.com/spec-kit/site-api/internal/mail"
	"github.com/spec-kit/site-api/internal/repository"
	"github.com/spec-kit/site-api/internal/ticketcode"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// TicketService coordinates the support ticket lifecycle:
// new -> open -> closed.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	mailer      mail.Mailer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	mailCfg     config.MailConfig
	siteBaseURL string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	Mailer      mail.Mailer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	MailConfig  config.MailConfig
	SiteBaseURL string
}

// TicketCreateInput describes the public ticket submission payload.
type TicketCreateInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// TicketPatchInput is the allow-listed staff partial update.
type TicketPatchInput struct {
	Name    *string
	Email   *string
	Subject *string
	Status  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		mailer:      deps.Mailer,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		mailCfg:     deps.MailConfig,
		siteBaseURL: deps.SiteBaseURL,
	}
}

// Create finds or creates the requester's user record, generates a unique
// public ticket code, stores the ticket in status new and emails the
// requester their code. The confirmation email failing does not fail the
// creation.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.SupportTicket, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	if name == "" || email == "" || subject == "" || message == "" {
		return nil, apperrors.NewValidationError("name, email, subject, message required", nil)
	}

	user, err := s.findOrCreateUser(ctx, name, email)
	if err != nil {
		return nil, err
	}

	code, err := ticketcode.Generate(ctx, s.tickets.ExistsByCode)
	if err != nil {
		return nil, err
	}

	ticket := &domain.SupportTicket{
		TicketCode: code,
		Name:       name,
		Email:      email,
		Subject:    subject,
		Message:    message,
		Status:     domain.TicketStatusNew,
		UserID:     user.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	emailSent := true
	if _, err := s.mailer.Send(ctx, mail.TicketConfirmation(s.mailCfg.From, s.siteBaseURL, ticket)); err != nil {
		emailSent = false
		s.logger.Error("ticket confirmation failed",
			zap.String("ticket_code", ticket.TicketCode), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		Payload:  events.TicketCreatedPayload{TicketCode: code, Email: email, EmailSent: emailSent},
	})
	return ticket, nil
}

// Lookup finds a ticket by public code and requester email, both normalized.
func (s *TicketService) Lookup(ctx context.Context, code, email string) (*domain.SupportTicket, error) {
	code = ticketcode.Normalize(code)
	email = normalizeEmail(email)
	if code == "" || email == "" {
		return nil, apperrors.NewValidationError("ticketId and email required", nil)
	}

	ticket, err := s.tickets.GetByCodeAndEmail(ctx, code, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": code})
		}
		return nil, err
	}
	return s.withReplies(ctx, ticket)
}

// PublicReply appends a requester reply identified by ticket code and email.
// Closed tickets reject replies; a first reply moves new to open.
func (s *TicketService) PublicReply(ctx context.Context, code, email, message string) (*domain.SupportTicket, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	code = ticketcode.Normalize(code)
	email = normalizeEmail(email)

	ticket, err := s.tickets.GetByCodeAndEmail(ctx, code, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": code})
		}
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticketId": code})
	}

	reply := &domain.Reply{
		Message:    message,
		SentBy:     "user",
		IsFromUser: true,
	}
	if err := s.tickets.AppendReply(ctx, ticket.ID, reply); err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusNew {
		if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusOpen); err != nil {
			return nil, err
		}
		ticket.Status = domain.TicketStatusOpen
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketReplied,
		EntityID: ticket.ID,
		Payload: events.TicketRepliedPayload{
			TicketCode: ticket.TicketCode,
			IsFromUser: true,
			SentBy:     "user",
			Status:     ticket.Status,
		},
	})
	return s.withReplies(ctx, ticket)
}

// ListForStaff returns tickets newest first, optionally filtered by status.
func (s *TicketService) ListForStaff(ctx context.Context, status string) ([]domain.SupportTicket, error) {
	var filter *domain.TicketStatus
	if status != "" {
		st := domain.TicketStatus(status)
		if !domain.ValidTicketStatus(st) {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
		}
		filter = &st
	}
	return s.tickets.List(ctx, filter)
}

// GetForStaff loads a ticket with its reply thread. Unlike contacts, viewing
// a ticket does not change its status.
func (s *TicketService) GetForStaff(ctx context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withReplies(ctx, ticket)
}

// Patch applies the allow-listed staff update. This is the only path that
// can move a ticket out of closed.
func (s *TicketService) Patch(ctx context.Context, id string, input TicketPatchInput) (*domain.SupportTicket, error) {
	update := repository.TicketUpdate{
		Name:    trimmed(input.Name),
		Subject: trimmed(input.Subject),
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, apperrors.NewValidationError("email must not be empty", nil)
		}
		update.Email = &email
	}
	if input.Status != nil {
		st := domain.TicketStatus(*input.Status)
		if !domain.ValidTicketStatus(st) {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": *input.Status})
		}
		update.Status = &st
	}

	if err := s.tickets.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.GetForStaff(ctx, id)
}

// StaffReply appends a staff reply and moves new tickets to open. When
// notify is set the requester is emailed; the reply persists regardless of
// the email outcome, which is reported through the returned flag.
func (s *TicketService) StaffReply(ctx context.Context, staffName, id, message string, notify bool) (*domain.SupportTicket, bool, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, false, apperrors.NewValidationError("message required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	reply := &domain.Reply{
		Message:    message,
		SentBy:     staffName,
		IsFromUser: false,
	}
	if err := s.tickets.AppendReply(ctx, ticket.ID, reply); err != nil {
		return nil, false, err
	}
	if ticket.Status == domain.TicketStatusNew {
		if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusOpen); err != nil {
			return nil, false, err
		}
		ticket.Status = domain.TicketStatusOpen
	}

	emailSent := true
	if notify {
		if _, err := s.mailer.Send(ctx, mail.TicketReply(s.mailCfg.From, s.siteBaseURL, ticket, message)); err != nil {
			emailSent = false
			s.logger.Error("ticket reply email failed",
				zap.String("ticket_code", ticket.TicketCode), zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketReplied,
		EntityID: ticket.ID,
		Payload: events.TicketRepliedPayload{
			TicketCode: ticket.TicketCode,
			IsFromUser: false,
			SentBy:     staffName,
			Status:     ticket.Status,
			EmailSent:  emailSent,
		},
	})

	ticket, err = s.withReplies(ctx, ticket)
	if err != nil {
		return nil, emailSent, err
	}
	return ticket, emailSent, nil
}

func (s *TicketService) findOrCreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	user = &domain.User{
		Name:   name,
		Email:  email,
		Status: domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *TicketService) withReplies(ctx context.Context, ticket *domain.SupportTicket) (*domain.SupportTicket, error) {
	replies, err := s.tickets.ListReplies(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Replies = replies
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func trimmed(val *string) *string {
	if val == nil {
		return nil
	}
	t := strings.TrimSpace(*val)
	return &t
}
