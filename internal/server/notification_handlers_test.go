package server

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim/internal/models"
	"moim/internal/testutil"
)

func seedNotification(t *testing.T, srv *Server, userID uint, message string) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationLike,
		Message: message,
	}
	_, err := srv.notificationSvc.Notify(context.Background(), n)
	require.NoError(t, err)
	return n
}

func TestListNotificationsAndUnreadCount(t *testing.T) {
	app, srv, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "recipient")
	testutil.SeedUser(t, db, 2, "someone")
	seedNotification(t, srv, 1, "first")
	seedNotification(t, srv, 1, "second")
	seedNotification(t, srv, 2, "not yours")
	token := authToken(t, "1")

	resp := doJSON(t, app, "GET", "/api/notifications/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])

	resp = doJSON(t, app, "GET", "/api/notifications/unread-count", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	count := decodeBody(t, resp)
	assert.Equal(t, float64(2), count["unread"])
}

func TestMarkNotificationRead(t *testing.T) {
	app, srv, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "recipient")
	testutil.SeedUser(t, db, 2, "other")
	n := seedNotification(t, srv, 1, "ping")

	// Another user cannot read it on the recipient's behalf.
	resp := doJSON(t, app, "POST", "/api/notifications/"+itoa(int(n.ID))+"/read", authToken(t, "2"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/notifications/"+itoa(int(n.ID))+"/read", authToken(t, "1"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/notifications/unread-count", authToken(t, "1"), nil)
	count := decodeBody(t, resp)
	assert.Equal(t, float64(0), count["unread"])
}

func TestMarkAllNotificationsRead(t *testing.T) {
	app, srv, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "recipient")
	seedNotification(t, srv, 1, "a")
	seedNotification(t, srv, 1, "b")
	token := authToken(t, "1")

	resp := doJSON(t, app, "POST", "/api/notifications/read-all", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/notifications/unread-count", token, nil)
	count := decodeBody(t, resp)
	assert.Equal(t, float64(0), count["unread"])
}

func TestMarkUnknownNotification(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "recipient")

	resp := doJSON(t, app, "POST", "/api/notifications/999/read", authToken(t, "1"), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
