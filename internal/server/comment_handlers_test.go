package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim/internal/testutil"
)

func TestCommentLifecycle(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	testutil.SeedUser(t, db, 2, "replier")
	post := testutil.SeedPost(t, db, 1, "free", "discussion")
	base := "/api/posts/" + itoa(int(post.ID)) + "/comments"

	resp := doJSON(t, app, "POST", base, authToken(t, "1"), fiber.Map{
		"content": "first comment",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	root := decodeBody(t, resp)
	rootID := uint(root["id"].(float64))

	resp = doJSON(t, app, "POST", base, authToken(t, "2"), fiber.Map{
		"content":   "a reply",
		"parent_id": rootID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	reply := decodeBody(t, resp)
	assert.Equal(t, float64(rootID), reply["parent_id"])

	resp = doJSON(t, app, "GET", base, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	assert.Equal(t, float64(2), listing["count"])

	// Comment count is maintained on the post row.
	resp = doJSON(t, app, "GET", "/api/posts/"+itoa(int(post.ID)), "", nil)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["comment_count"])
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	testutil.SeedUser(t, db, 2, "other")
	post := testutil.SeedPost(t, db, 1, "free", "discussion")
	base := "/api/posts/" + itoa(int(post.ID)) + "/comments"

	resp := doJSON(t, app, "POST", base, authToken(t, "1"), fiber.Map{"content": "mine"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	commentPath := base + "/" + itoa(int(created["id"].(float64)))

	resp = doJSON(t, app, "PATCH", commentPath, authToken(t, "2"), fiber.Map{"content": "hijack"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "PATCH", commentPath, authToken(t, "1"), fiber.Map{"content": "edited"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeBody(t, resp)
	assert.Equal(t, "edited", updated["content"])
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	post := testutil.SeedPost(t, db, 1, "free", "discussion")
	base := "/api/posts/" + itoa(int(post.ID)) + "/comments"
	token := authToken(t, "1")

	resp := doJSON(t, app, "POST", base, token, fiber.Map{"content": "root"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	root := decodeBody(t, resp)
	rootID := uint(root["id"].(float64))

	resp = doJSON(t, app, "POST", base, token, fiber.Map{"content": "child", "parent_id": rootID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", base+"/"+itoa(int(rootID)), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["deleted"])

	resp = doJSON(t, app, "GET", base, "", nil)
	listing := decodeBody(t, resp)
	assert.Equal(t, float64(0), listing["count"])
}
