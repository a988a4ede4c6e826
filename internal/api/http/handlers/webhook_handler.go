package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/site-api/internal/mail"
	"github.com/spec-kit/site-api/internal/persistence"
	"github.com/spec-kit/site-api/internal/service"
	apperrors "github.com/spec-kit/site-api/pkg/util/errorutil"
)

// dedupTTL covers the provider's redelivery window with margin.
const dedupTTL = 24 * time.Hour

// WebhookHandler receives signed inbound events from the email provider.
type WebhookHandler struct {
	contacts      *service.ContactService
	redis         *persistence.Redis
	logger        *zap.Logger
	signingSecret string
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(contactService *service.ContactService, redis *persistence.Redis, logger *zap.Logger, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		contacts:      contactService,
		redis:         redis,
		logger:        logger,
		signingSecret: signingSecret,
	}
}

// Handle POST /email-webhook. Signature verification happens before any
// state mutation; unverifiable or malformed requests are rejected outright.
// Processing errors after verification are logged and swallowed so the
// provider does not hammer the endpoint with redeliveries.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	if h.signingSecret == "" {
		return apperrors.NewInternalError(errors.New("MAIL_WEBHOOK_SECRET not configured"))
	}

	msgID := c.Get(mail.HeaderWebhookID)
	timestamp := c.Get(mail.HeaderWebhookTimestamp)
	signature := c.Get(mail.HeaderWebhookSignature)
	body := c.Body()

	if err := mail.VerifyWebhookSignature(h.signingSecret, msgID, timestamp, body, signature); err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		return apperrors.NewUnauthorized("invalid webhook signature")
	}

	var event mail.InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewValidationError("malformed webhook payload", nil)
	}

	seen, _ := h.redis.MarkEventSeen(c.UserContext(), msgID, dedupTTL)
	if seen {
		h.logger.Debug("duplicate webhook delivery skipped", zap.String("webhook_id", msgID))
		return c.JSON(fiber.Map{"received": true})
	}

	if err := h.contacts.HandleInbound(c.UserContext(), event); err != nil {
		h.logger.Error("webhook processing failed", zap.String("webhook_id", msgID), zap.Error(err))
	}
	return c.JSON(fiber.Map{"received": true})
}
