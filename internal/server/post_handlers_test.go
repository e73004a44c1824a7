package server

import (
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moim/internal/testutil"
)

func TestCreateAndGetPost(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	token := authToken(t, "1")

	resp := doJSON(t, app, "POST", "/api/posts/", token, fiber.Map{
		"title":    "sharing my notes",
		"content":  "weekly retrospective",
		"category": "free",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "sharing my notes", created["title"])

	id := int(created["id"].(float64))
	resp = doJSON(t, app, "GET", "/api/posts/"+itoa(id), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	assert.Equal(t, "free", got["category"])
}

func TestCreateStudyPostWithRecruitment(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "organizer")
	token := authToken(t, "1")

	now := time.Now().UTC().Truncate(time.Second)
	resp := doJSON(t, app, "POST", "/api/posts/", token, fiber.Map{
		"title":    "algorithm study",
		"content":  "twice a week",
		"category": "study",
		"recruitment": fiber.Map{
			"recruit_start": now.AddDate(0, 0, -1),
			"recruit_end":   now.AddDate(0, 0, 7),
			"study_start":   now.AddDate(0, 0, 8),
			"study_end":     now.AddDate(0, 1, 8),
			"max_member":    5,
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "모집중", created["badge"])
}

func TestCreateStudyPostWithoutRecruitmentRejected(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "organizer")
	token := authToken(t, "1")

	resp := doJSON(t, app, "POST", "/api/posts/", token, fiber.Map{
		"title":    "study without dates",
		"content":  "missing window",
		"category": "study",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePostOwnership(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	testutil.SeedUser(t, db, 2, "intruder")
	post := testutil.SeedPost(t, db, 1, "free", "original title")

	resp := doJSON(t, app, "PATCH", "/api/posts/"+itoa(int(post.ID)), authToken(t, "2"), fiber.Map{
		"title": "hijacked",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "PATCH", "/api/posts/"+itoa(int(post.ID)), authToken(t, "1"), fiber.Map{
		"title": "revised title",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "revised title", body["title"])
}

func TestDeletePostThenGone(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	post := testutil.SeedPost(t, db, 1, "free", "ephemeral")
	token := authToken(t, "1")

	resp := doJSON(t, app, "DELETE", "/api/posts/"+itoa(int(post.ID)), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/posts/"+itoa(int(post.ID)), token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	testutil.SeedUser(t, db, 2, "reader")
	post := testutil.SeedPost(t, db, 1, "free", "likeable")
	token := authToken(t, "2")
	path := "/api/posts/" + itoa(int(post.ID)) + "/like"

	resp := doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])
	assert.Equal(t, "좋아요를 눌렀습니다", body["message"])

	resp = doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, float64(0), body["like_count"])
	assert.Equal(t, "좋아요를 취소했습니다", body["message"])
}

func TestRecordViewAndRanking(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	post := testutil.SeedPost(t, db, 1, "free", "popular")

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, "POST", "/api/posts/"+itoa(int(post.ID))+"/views", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := doJSON(t, app, "GET", "/api/posts/"+itoa(int(post.ID)), "", nil)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["view_count"])

	resp = doJSON(t, app, "GET", "/api/rankings/weekly?category=free", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	ranking := decodeBody(t, resp)
	items := ranking["items"].([]any)
	require.Len(t, items, 1)

	resp = doJSON(t, app, "GET", "/api/rankings/weekly?category=bogus", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListFeedDateFilter(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "author")
	testutil.SeedPost(t, db, 1, "free", "today's post")

	today := time.Now().UTC().Format("2006-01-02")
	resp := doJSON(t, app, "GET", "/api/posts/list?from="+today+"&to="+today, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	items := body["items"].([]any)
	assert.Len(t, items, 1)

	resp = doJSON(t, app, "GET", "/api/posts/list?from=not-a-date", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
