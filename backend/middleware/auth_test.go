package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/services"
	"github.com/hobbyline/cardbinder/backend/utils"
)

func sessionCookie(t *testing.T, svc *services.SessionService, expiresAt time.Time) string {
	t.Helper()

	data, err := json.Marshal(&webmodels.UserSession{
		UserID:    "user-1",
		Username:  "casey",
		Email:     "casey@example.com",
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)

	signed, err := svc.SignData(data)
	require.NoError(t, err)
	return signed
}

func newAuthApp(svc *services.SessionService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthRequired(svc), func(c *fiber.Ctx) error {
		session, _ := utils.ExtractUserSession(c)
		return c.SendString(session.UserID)
	})
	app.Get("/open", OptionalAuth(svc), func(c *fiber.Ctx) error {
		if session, ok := utils.ExtractUserSession(c); ok {
			return c.SendString(session.UserID)
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestAuthRequiredRejectsMissingSession(t *testing.T) {
	app := newAuthApp(services.NewSessionService("secret", "test"))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequiredAcceptsValidSession(t *testing.T) {
	svc := services.NewSessionService("secret", "test")
	app := newAuthApp(svc)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.SessionCookieName,
		Value: sessionCookie(t, svc, time.Now().Add(24*time.Hour)),
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-1", string(body))
	assert.Empty(t, resp.Header.Get("Set-Cookie"), "fresh sessions should not be reissued")
}

func TestAuthRequiredRefreshesExpiringSession(t *testing.T) {
	svc := services.NewSessionService("secret", "test")
	app := newAuthApp(svc)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.SessionCookieName,
		Value: sessionCookie(t, svc, time.Now().Add(time.Hour)),
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	setCookie := resp.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(setCookie, services.SessionCookieName+"="),
		"expiring sessions should be reissued, got %q", setCookie)
}

func TestAuthRequiredRejectsTamperedCookie(t *testing.T) {
	svc := services.NewSessionService("secret", "test")
	app := newAuthApp(svc)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.SessionCookieName,
		Value: sessionCookie(t, services.NewSessionService("other-secret", "test"), time.Now().Add(24*time.Hour)),
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	app := newAuthApp(services.NewSessionService("secret", "test"))

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", string(body))
}

func TestOptionalAuthAttachesSession(t *testing.T) {
	svc := services.NewSessionService("secret", "test")
	app := newAuthApp(svc)

	req := httptest.NewRequest("GET", "/open", nil)
	req.AddCookie(&http.Cookie{
		Name:  services.SessionCookieName,
		Value: sessionCookie(t, svc, time.Now().Add(24*time.Hour)),
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-1", string(body))
}
