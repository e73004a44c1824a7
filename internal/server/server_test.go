package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"moim/internal/config"
	"moim/internal/storage"
	"moim/internal/testutil"
)

const testJWTSecret = "server-handler-test-secret"

func newTestServer(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		Port:             "0",
		Env:              "test",
		JWTSecret:        testJWTSecret,
		UploadDir:        t.TempDir(),
		PublicBaseURL:    "http://media.test",
		AIModel:          "text-draft-001",
		AIRequestTimeout: 2 * time.Second,
	}

	db := testutil.NewTestDB(t)
	store, err := storage.NewDiskStorage(cfg.UploadDir, cfg.PublicBaseURL)
	require.NoError(t, err)

	srv := NewServerWithDeps(cfg, db, nil, store)
	return srv.App(), srv, db
}

func authToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp := doJSON(t, app, "GET", "/api/", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app, _, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{"POST", "/api/posts/"},
		{"POST", "/api/applications/"},
		{"GET", "/api/notifications/"},
		{"POST", "/api/ai/summaries"},
	}
	for _, p := range paths {
		resp := doJSON(t, app, p.method, p.path, "", fiber.Map{})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
	}
}

func TestPublicReadsWorkWithoutAuth(t *testing.T) {
	app, _, db := newTestServer(t)
	user := testutil.SeedUser(t, db, 1, "writer")
	testutil.SeedPost(t, db, user.ID, "free", "open read")

	resp := doJSON(t, app, "GET", "/api/posts/list", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/posts/1", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "open read", body["title"])
	assert.Equal(t, false, body["liked"])
}

func TestInvalidIDParam(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp := doJSON(t, app, "GET", "/api/posts/abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
