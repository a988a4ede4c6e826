package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/site-api/internal/api/http"
	"github.com/spec-kit/site-api/internal/auth"
	"github.com/spec-kit/site-api/internal/domain"
	"github.com/spec-kit/site-api/internal/observability"
	"github.com/spec-kit/site-api/internal/repository"
)

// stubAdminRepo answers the principal load the guard performs; any other
// call panics on the nil embedded interface.
type stubAdminRepo struct {
	repository.AdminRepository
	admin *domain.Admin
}

func (s stubAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	if s.admin != nil && s.admin.ID == id {
		return s.admin, nil
	}
	return nil, pgx.ErrNoRows
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newGuardedApp(t *testing.T) (*fiber.App, *auth.TokenManager, *domain.Admin) {
	t.Helper()

	admin := &domain.Admin{ID: "admin-1", Name: "Grace", Email: "grace@example.com"}
	tokens := auth.NewTokenManager("test-secret", 60)
	guard := auth.NewAdminMiddleware(tokens, stubAdminRepo{admin: admin})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)

	group := app.Group("/admin", guard.Handle)
	group.Get("/whoami", func(c *fiber.Ctx) error {
		principal, ok := auth.AdminFromContext(c)
		require.True(t, ok)
		_, hasDeadline := c.UserContext().Deadline()
		return c.JSON(fiber.Map{
			"name":        principal.Name,
			"hasDeadline": hasDeadline,
		})
	})
	return app, tokens, admin
}

func requireUnauthorized(t *testing.T, app *fiber.App, authorization string) {
	t.Helper()

	req := httptest.NewRequest("GET", "/admin/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestAdminGuardRejectsMissingHeader(t *testing.T) {
	app, _, _ := newGuardedApp(t)
	requireUnauthorized(t, app, "")
}

func TestAdminGuardRejectsMalformedHeader(t *testing.T) {
	app, tokens, admin := newGuardedApp(t)
	token, _, err := tokens.GenerateToken(admin.ID, admin.Email)
	require.NoError(t, err)

	requireUnauthorized(t, app, "Bearer")
	requireUnauthorized(t, app, "Token "+token)
}

func TestAdminGuardRejectsInvalidToken(t *testing.T) {
	app, _, _ := newGuardedApp(t)
	requireUnauthorized(t, app, "Bearer not-a-token")
}

func TestAdminGuardRejectsWrongSigningKey(t *testing.T) {
	app, _, admin := newGuardedApp(t)

	forged, _, err := auth.NewTokenManager("other-secret", 60).GenerateToken(admin.ID, admin.Email)
	require.NoError(t, err)
	requireUnauthorized(t, app, "Bearer "+forged)
}

func TestAdminGuardRejectsDeletedAdmin(t *testing.T) {
	app, tokens, _ := newGuardedApp(t)

	// Valid signature, but the account behind it no longer exists.
	token, _, err := tokens.GenerateToken("admin-gone", "gone@example.com")
	require.NoError(t, err)
	requireUnauthorized(t, app, "Bearer "+token)
}

func TestAdminGuardAdmitsValidToken(t *testing.T) {
	app, tokens, admin := newGuardedApp(t)
	token, _, err := tokens.GenerateToken(admin.ID, admin.Email)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Name        string `json:"name"`
		HasDeadline bool   `json:"hasDeadline"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Grace", body.Name)
	// The request timeout reaches handlers through the user context.
	assert.True(t, body.HasDeadline)
}
