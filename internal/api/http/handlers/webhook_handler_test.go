package handlers_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/site-api/internal/api/http"
	"github.com/spec-kit/site-api/internal/api/http/handlers"
	"github.com/spec-kit/site-api/internal/config"
	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/mail"
	"github.com/spec-kit/site-api/internal/observability"
	"github.com/spec-kit/site-api/internal/repository"
	"github.com/spec-kit/site-api/internal/service"
)

// stubContactRepo answers the lookups HandleInbound performs for an
// unmatched event; any other call panics on the nil embedded interface.
type stubContactRepo struct {
	repository.ContactRepository
}

func (stubContactRepo) FindByLastEmailID(context.Context, string) (*domain.ContactSubmission, error) {
	return nil, pgx.ErrNoRows
}

func (stubContactRepo) MostRecentByEmail(context.Context, string) (*domain.ContactSubmission, error) {
	return nil, pgx.ErrNoRows
}

var testSigningSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("webhook-test-secret"))

func newWebhookApp(t *testing.T) *fiber.App {
	t.Helper()

	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: stubContactRepo{},
		Logger:      zap.NewNop(),
		MailConfig:  config.MailConfig{APIKey: "re_test", AdminEmail: "admin@example.com"},
	})
	handler := handlers.NewWebhookHandler(contactService, nil, zap.NewNop(), testSigningSecret)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	app.Post("/email-webhook", handler.Handle)
	return app
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	app := newWebhookApp(t)

	req := httptest.NewRequest("POST", "/email-webhook", strings.NewReader(`{"type":"email.received"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookRejectsTamperedPayload(t *testing.T) {
	app := newWebhookApp(t)

	payload := `{"type":"email.received","data":{"from":"ada@example.com","text":"hi"}}`
	msgID := "msg_1"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature, err := mail.SignWebhookPayload(testSigningSecret, msgID, timestamp, []byte(payload))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/email-webhook", strings.NewReader(payload+" "))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mail.HeaderWebhookID, msgID)
	req.Header.Set(mail.HeaderWebhookTimestamp, timestamp)
	req.Header.Set(mail.HeaderWebhookSignature, signature)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebhookAcceptsSignedDelivery(t *testing.T) {
	app := newWebhookApp(t)

	payload := `{"type":"email.received","data":{"email_id":"em_1","from":"ada@example.com","text":"hi"}}`
	msgID := "msg_2"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature, err := mail.SignWebhookPayload(testSigningSecret, msgID, timestamp, []byte(payload))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/email-webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mail.HeaderWebhookID, msgID)
	req.Header.Set(mail.HeaderWebhookTimestamp, timestamp)
	req.Header.Set(mail.HeaderWebhookSignature, signature)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["received"])
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	app := newWebhookApp(t)

	payload := `{"type":` // signed, but not JSON
	msgID := "msg_3"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature, err := mail.SignWebhookPayload(testSigningSecret, msgID, timestamp, []byte(payload))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/email-webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mail.HeaderWebhookID, msgID)
	req.Header.Set(mail.HeaderWebhookTimestamp, timestamp)
	req.Header.Set(mail.HeaderWebhookSignature, signature)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
