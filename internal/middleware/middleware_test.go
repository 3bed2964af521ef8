package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(devSecret))
	require.NoError(t, err)
	return s
}

func firebaseClaims(uid, project string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": uid,
		"sub":     uid,
		"aud":     project,
		"iss":     "https://securetoken.google.com/" + project,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func newProtectedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", IdentityProtected(cfg), func(c *fiber.Ctx) error {
		return c.SendString(identity.GetUID(c))
	})
	app.Get("/admin", IdentityProtected(cfg), AdminRequired(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func call(t *testing.T, app *fiber.App, path string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestIdentityProtected(t *testing.T) {
	cfg := &config.Config{AuthRequired: true, IdentityDevSecret: devSecret, FirebaseProjectID: "lawconnect"}
	app := newProtectedApp(cfg)

	good := signToken(t, firebaseClaims("uid-1", "lawconnect"))
	assert.Equal(t, fiber.StatusOK, call(t, app, "/me", map[string]string{"Authorization": "Bearer " + good}))

	otherProject := signToken(t, firebaseClaims("uid-1", "elsewhere"))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", map[string]string{"Authorization": "Bearer " + otherProject}))

	expired := firebaseClaims("uid-1", "lawconnect")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", map[string]string{"Authorization": "Bearer " + signToken(t, expired)}))

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", nil))
}

func TestIdentityOptional(t *testing.T) {
	app := newProtectedApp(&config.Config{})
	assert.Equal(t, fiber.StatusOK, call(t, app, "/me", nil))
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{
		AuthRequired:      true,
		IdentityDevSecret: devSecret,
		AdminUIDs:         "uid-admin, uid-ops",
	}
	app := newProtectedApp(cfg)

	admin := signToken(t, firebaseClaims("uid-ops", "any"))
	user := signToken(t, firebaseClaims("uid-1", "any"))
	assert.Equal(t, fiber.StatusOK, call(t, app, "/admin", map[string]string{"Authorization": "Bearer " + admin}))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/admin", map[string]string{"Authorization": "Bearer " + user}))

	tokenOnly := &config.Config{AdminToken: "s3cret"}
	app = newProtectedApp(tokenOnly)
	assert.Equal(t, fiber.StatusOK, call(t, app, "/admin", map[string]string{"X-Admin-Token": "s3cret"}))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/admin", map[string]string{"X-Admin-Token": "wrong"}))
}

func TestAdminTokenMustMatchExactly(t *testing.T) {
	app := newProtectedApp(&config.Config{AdminToken: "s3cret"})
	for _, got := range []string{"s3cre", "s3cret!", "S3CRET", ""} {
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/admin", map[string]string{"X-Admin-Token": got}), got)
	}

	// An unset token never matches an empty header.
	app = newProtectedApp(&config.Config{})
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/admin", map[string]string{"X-Admin-Token": ""}))
}

func TestCORSFromConfig(t *testing.T) {
	preflight := func(cfg *config.Config) *http.Response {
		app := fiber.New()
		app.Use(CORS(cfg))
		app.Put("/api/lawyers/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
		req := httptest.NewRequest("OPTIONS", "/api/lawyers/fb-1", nil)
		req.Header.Set("Origin", "https://app.lawconnect.test")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := preflight(&config.Config{
		CORSOrigins: "https://app.lawconnect.test",
		CORSMethods: "GET,PUT",
		CORSHeaders: "Authorization,X-Trace",
	})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.lawconnect.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,PUT", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization,X-Trace", resp.Header.Get("Access-Control-Allow-Headers"))

	resp = preflight(&config.Config{})
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, defaultCORSMethods, resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Admin-Token")
}

type captureHandler struct{ attrs map[string]string }

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.attrs = map[string]string{}
	r.Attrs(func(a slog.Attr) bool {
		h.attrs[a.Key] = a.Value.String()
		return true
	})
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func TestRequestScopeReachesServiceLogs(t *testing.T) {
	capture := &captureHandler{}
	logger := slog.New(logging.NewMultiHandler(capture))
	cfg := &config.Config{AuthRequired: true, IdentityDevSecret: devSecret}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestScope())
	app.Get("/api/chats/:id", IdentityProtected(cfg), func(c *fiber.Ctx) error {
		logger.WarnContext(c.UserContext(), "cache read failed")
		return c.SendStatus(fiber.StatusNoContent)
	})

	token := signToken(t, firebaseClaims("fb-ann", "any"))
	req := httptest.NewRequest("GET", "/api/chats/fb-ann", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	assert.Equal(t, "req-123", capture.attrs["request_id"])
	assert.Equal(t, "/api/chats/fb-ann", capture.attrs["path"])
	assert.Equal(t, "fb-ann", capture.attrs["uid"])
}

func TestRequestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(RequestMetrics(m))
	app.Get("/api/lawyers/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, fiber.StatusNoContent, call(t, app, "/api/lawyers/"+id, nil))
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "lawconnect_request_duration_seconds" {
			continue
		}
		found = true
		require.Len(t, mf.GetMetric(), 1)
		assert.Equal(t, uint64(3), mf.GetMetric()[0].GetHistogram().GetSampleCount())
	}
	assert.True(t, found)
}
