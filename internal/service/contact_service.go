package service

import (
	"context"
	"errors"
	netmail "net/mail"
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
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// ContactService coordinates the contact submission lifecycle:
// new -> read -> replied.
type ContactService struct {
	contacts   repository.ContactRepository
	mailer     mail.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	mailCfg    config.MailConfig
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	Mailer      mail.Mailer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	MailConfig  config.MailConfig
}

// ContactCreateInput describes the public submission payload.
type ContactCreateInput struct {
	Name    string
	Email   string
	Message string
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	return &ContactService{
		contacts:   deps.ContactRepo,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		mailCfg:    deps.MailConfig,
	}
}

// Create stores a new submission and notifies both the admin address and the
// submitter. The provider id of the confirmation email is stored for inbound
// reply correlation. Mail failures after the insert do not roll the record
// back.
func (s *ContactService) Create(ctx context.Context, input ContactCreateInput) (*domain.ContactSubmission, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	message := strings.TrimSpace(input.Message)
	if name == "" || email == "" || message == "" {
		return nil, apperrors.NewValidationError("name, email, message required", nil)
	}

	// The endpoint depends on outbound email; refuse up front when the
	// provider is not configured instead of silently degrading.
	if err := s.mailCfg.Validate(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	contact := &domain.ContactSubmission{
		Name:    name,
		Email:   email,
		Message: message,
		Status:  domain.ContactStatusNew,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	emailSent := true
	if _, err := s.mailer.Send(ctx, mail.ContactAdminNotification(s.mailCfg.From, s.mailCfg.AdminEmail, contact)); err != nil {
		emailSent = false
		s.logger.Error("contact admin notification failed", zap.String("contact_id", contact.ID), zap.Error(err))
	}
	if emailID, err := s.mailer.Send(ctx, mail.ContactConfirmation(s.mailCfg.From, contact)); err != nil {
		emailSent = false
		s.logger.Error("contact confirmation failed", zap.String("contact_id", contact.ID), zap.Error(err))
	} else if err := s.contacts.SetLastEmailID(ctx, contact.ID, emailID); err != nil {
		s.logger.Error("storing last email id failed", zap.String("contact_id", contact.ID), zap.Error(err))
	} else {
		contact.LastEmailID = &emailID
	}

	s.publish(ctx, events.Event{
		Type:     events.EventContactCreated,
		EntityID: contact.ID,
		Payload:  events.ContactCreatedPayload{Email: contact.Email, EmailSent: emailSent},
	})
	return contact, nil
}

// List returns submissions newest first, optionally filtered by status.
func (s *ContactService) List(ctx context.Context, status string) ([]domain.ContactSubmission, error) {
	var filter *domain.ContactStatus
	if status != "" {
		st := domain.ContactStatus(status)
		if !domain.ValidContactStatus(st) {
			return nil, apperrors.NewValidationError("unknown contact status", map[string]any{"status": status})
		}
		filter = &st
	}
	return s.contacts.List(ctx, filter)
}

// Get loads a submission with its reply thread. Opening a new submission
// marks it read; the transition never reverts later statuses and repeated
// opens are idempotent.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.ContactSubmission, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact.Status == domain.ContactStatusNew {
		if err := s.contacts.UpdateStatus(ctx, contact.ID, domain.ContactStatusRead); err != nil {
			return nil, err
		}
		contact.Status = domain.ContactStatusRead
	}
	replies, err := s.contacts.ListReplies(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	contact.Replies = replies
	return contact, nil
}

// Patch applies the allow-listed partial update (status only).
func (s *ContactService) Patch(ctx context.Context, id, status string) (*domain.ContactSubmission, error) {
	st := domain.ContactStatus(status)
	if !domain.ValidContactStatus(st) {
		return nil, apperrors.NewValidationError("unknown contact status", map[string]any{"status": status})
	}
	if err := s.contacts.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return s.contacts.GetByID(ctx, id)
}

// StaffReply appends a staff reply, moves the submission to replied from any
// prior status, and emails the submitter the reply with a quoted copy of
// their original message. The reply persists even when the email fails; the
// failure is reported through the returned flag.
func (s *ContactService) StaffReply(ctx context.Context, staffName, id, message string) (*domain.ContactSubmission, bool, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, false, apperrors.NewValidationError("message required", nil)
	}

	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	reply := &domain.Reply{
		Message:    message,
		SentBy:     staffName,
		IsFromUser: false,
	}
	if err := s.contacts.AppendReply(ctx, contact.ID, reply); err != nil {
		return nil, false, err
	}
	if err := s.contacts.UpdateStatus(ctx, contact.ID, domain.ContactStatusReplied); err != nil {
		return nil, false, err
	}
	contact.Status = domain.ContactStatusReplied

	emailSent := true
	if emailID, err := s.mailer.Send(ctx, mail.ContactReply(s.mailCfg.From, contact, message)); err != nil {
		emailSent = false
		s.logger.Error("contact reply email failed", zap.String("contact_id", contact.ID), zap.Error(err))
	} else if err := s.contacts.SetLastEmailID(ctx, contact.ID, emailID); err != nil {
		s.logger.Error("storing last email id failed", zap.String("contact_id", contact.ID), zap.Error(err))
	} else {
		contact.LastEmailID = &emailID
	}

	replies, err := s.contacts.ListReplies(ctx, contact.ID)
	if err != nil {
		return nil, false, err
	}
	contact.Replies = replies

	s.publish(ctx, events.Event{
		Type:     events.EventContactReplied,
		EntityID: contact.ID,
		Payload:  events.ContactRepliedPayload{IsFromUser: false, SentBy: staffName, Status: contact.Status},
	})
	return contact, emailSent, nil
}

// HandleInbound processes a verified provider event describing an inbound
// email. The originating submission is located by the provider id the sender
// replied to, falling back to the newest submission from the same address.
// Unmatched events are discarded.
func (s *ContactService) HandleInbound(ctx context.Context, event mail.InboundEvent) error {
	if event.Type != mail.InboundEventEmailReceived {
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	from := normalizeEmail(extractAddress(event.Data.From))
	contact, err := s.matchContact(ctx, event.Data.InReplyTo, from)
	if err != nil {
		return err
	}
	if contact == nil {
		s.logger.Info("inbound email matched no contact",
			zap.String("email_id", event.Data.EmailID),
			zap.String("from", from))
		s.publish(ctx, events.Event{
			Type:    events.EventInboundEmailReceived,
			Payload: events.InboundEmailPayload{EmailID: event.Data.EmailID, From: from, Matched: false},
		})
		return nil
	}

	reply := &domain.Reply{
		Message:    strings.TrimSpace(event.Data.Text),
		SentBy:     from,
		IsFromUser: true,
	}
	if reply.Message == "" {
		reply.Message = event.Data.Subject
	}
	if err := s.contacts.AppendReply(ctx, contact.ID, reply); err != nil {
		return err
	}
	if contact.Status == domain.ContactStatusRead {
		if err := s.contacts.UpdateStatus(ctx, contact.ID, domain.ContactStatusReplied); err != nil {
			return err
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventInboundEmailReceived,
		EntityID: contact.ID,
		Payload:  events.InboundEmailPayload{EmailID: event.Data.EmailID, From: from, Matched: true},
	})
	return nil
}

func (s *ContactService) matchContact(ctx context.Context, inReplyTo, from string) (*domain.ContactSubmission, error) {
	if inReplyTo != "" {
		contact, err := s.contacts.FindByLastEmailID(ctx, inReplyTo)
		if err == nil {
			return contact, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if from == "" {
		return nil, nil
	}
	contact, err := s.contacts.MostRecentByEmail(ctx, from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) publish(ctx context.Context, event events.Event) {
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// extractAddress reduces "Name <a@x.com>" to the bare address.
func extractAddress(from string) string {
	if addr, err := netmail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return from
}
