package server

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/testutil"
)

func seedStudy(t *testing.T, db *gorm.DB, ownerID uint) *models.Post {
	t.Helper()
	post := testutil.SeedPost(t, db, ownerID, "study", "go study group")
	now := time.Now().UTC()
	rec := &models.StudyRecruitment{
		PostID:       post.ID,
		RecruitStart: now.AddDate(0, 0, -1),
		RecruitEnd:   now.AddDate(0, 0, 7),
		StudyStart:   now.AddDate(0, 0, 8),
		StudyEnd:     now.AddDate(0, 1, 8),
		MaxMember:    3,
	}
	require.NoError(t, db.Create(rec).Error)
	return post
}

func TestApplyAndDecide(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "owner")
	testutil.SeedUser(t, db, 2, "applicant")
	post := seedStudy(t, db, 1)

	resp := doJSON(t, app, "POST", "/api/applications/", authToken(t, "2"), fiber.Map{
		"post_id": post.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	application := decodeBody(t, resp)
	assert.Equal(t, "pending", application["status"])
	appID := itoa(int(application["id"].(float64)))

	// Only the post owner may decide.
	resp = doJSON(t, app, "POST", "/api/applications/"+appID+"/approve", authToken(t, "2"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/applications/"+appID+"/approve", authToken(t, "1"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decided := decodeBody(t, resp)
	assert.Equal(t, "approved", decided["status"])

	// The owner notification for the application exists.
	resp = doJSON(t, app, "GET", "/api/notifications/", authToken(t, "1"), nil)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["count"])
}

func TestApplyRejectsOwnPost(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "owner")
	post := seedStudy(t, db, 1)

	resp := doJSON(t, app, "POST", "/api/applications/", authToken(t, "1"), fiber.Map{
		"post_id": post.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestApplyDuplicateConflicts(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "owner")
	testutil.SeedUser(t, db, 2, "applicant")
	post := seedStudy(t, db, 1)
	token := authToken(t, "2")

	resp := doJSON(t, app, "POST", "/api/applications/", token, fiber.Map{"post_id": post.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/applications/", token, fiber.Map{"post_id": post.ID})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestApplyMissingPostID(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "user")

	resp := doJSON(t, app, "POST", "/api/applications/", authToken(t, "1"), fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListApplications(t *testing.T) {
	app, _, db := newTestServer(t)
	testutil.SeedUser(t, db, 1, "owner")
	testutil.SeedUser(t, db, 2, "applicant")
	post := seedStudy(t, db, 1)

	resp := doJSON(t, app, "POST", "/api/applications/", authToken(t, "2"), fiber.Map{"post_id": post.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	byPost := "/api/posts/" + itoa(int(post.ID)) + "/applications"

	// Owner sees the roster; the applicant does not.
	resp = doJSON(t, app, "GET", byPost, authToken(t, "1"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	roster := decodeBody(t, resp)
	assert.Equal(t, float64(1), roster["count"])

	resp = doJSON(t, app, "GET", byPost, authToken(t, "2"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/applications/mine", authToken(t, "2"), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	mine := decodeBody(t, resp)
	assert.Equal(t, float64(1), mine["count"])
}
