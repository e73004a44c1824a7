package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/repository"
	"moim/internal/testutil"
)

func newFeedService(t *testing.T) (*FeedService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc := NewFeedService(
		repository.NewPostRepository(db),
		repository.NewStudyRepository(db),
		repository.NewAttachmentRepository(db),
	)
	return svc, db
}

func TestBadgePureFunction(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	assert.Equal(t, "", Badge(start.Add(-time.Hour), start, end, 3, 0))
	assert.Equal(t, "", Badge(end.Add(time.Hour), start, end, 3, 0))
	assert.Equal(t, BadgeOpen, Badge(now, start, end, 3, 2))
	assert.Equal(t, BadgeComplete, Badge(now, start, end, 3, 3))
	assert.Equal(t, BadgeComplete, Badge(now, start, end, 3, 5))
	// Boundary instants are inside the window.
	assert.Equal(t, BadgeOpen, Badge(start, start, end, 3, 0))
	assert.Equal(t, BadgeOpen, Badge(end, start, end, 3, 0))
	// Zero max member completes immediately.
	assert.Equal(t, BadgeComplete, Badge(now, start, end, 0, 0))
}

func TestListFeedValidation(t *testing.T) {
	svc, _ := newFeedService(t)
	ctx := context.Background()

	_, err := svc.ListFeed(ctx, ListFeedInput{Category: "bogus"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	_, err = svc.ListFeed(ctx, ListFeedInput{Scope: "bogus"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	_, err = svc.ListFeed(ctx, ListFeedInput{Badge: "bogus"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestListFeedPaginationCoversAll(t *testing.T) {
	svc, db := newFeedService(t)
	testutil.SeedUser(t, db, 1, "alice")
	for i := 0; i < 25; i++ {
		testutil.SeedPost(t, db, 1, models.CategoryFree, fmt.Sprintf("post %02d", i))
	}
	ctx := context.Background()

	var seen []uint
	cursor := uint(0)
	for {
		page, err := svc.ListFeed(ctx, ListFeedInput{Category: "free", Cursor: cursor, Limit: 10})
		require.NoError(t, err)
		for _, p := range page.Items {
			if len(seen) > 0 {
				assert.Less(t, p.ID, seen[len(seen)-1])
			}
			seen = append(seen, p.ID)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	assert.Len(t, seen, 25)
}

func TestListFeedEnrichesStudyBadges(t *testing.T) {
	svc, db := newFeedService(t)
	testutil.SeedUser(t, db, 1, "alice")
	testutil.SeedUser(t, db, 2, "bob")
	testutil.SeedUser(t, db, 3, "carol")

	now := time.Now()
	open := testutil.SeedPost(t, db, 1, models.CategoryStudy, "open study")
	require.NoError(t, db.Create(&models.StudyRecruitment{
		PostID:       open.ID,
		RecruitStart: now.Add(-time.Hour),
		RecruitEnd:   now.Add(time.Hour),
		StudyStart:   now.Add(2 * time.Hour),
		StudyEnd:     now.Add(3 * time.Hour),
		MaxMember:    2,
	}).Error)

	full := testutil.SeedPost(t, db, 1, models.CategoryStudy, "full study")
	require.NoError(t, db.Create(&models.StudyRecruitment{
		PostID:       full.ID,
		RecruitStart: now.Add(-time.Hour),
		RecruitEnd:   now.Add(time.Hour),
		StudyStart:   now.Add(2 * time.Hour),
		StudyEnd:     now.Add(3 * time.Hour),
		MaxMember:    2,
	}).Error)
	for _, uid := range []uint{2, 3} {
		require.NoError(t, db.Create(&models.StudyApplication{
			PostID: full.ID, UserID: uid, Status: models.ApplicationApproved,
		}).Error)
	}

	page, err := svc.ListFeed(context.Background(), ListFeedInput{Category: "study"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	byID := map[uint]*models.Post{}
	for _, p := range page.Items {
		byID[p.ID] = p
	}
	assert.Equal(t, BadgeOpen, byID[open.ID].Badge)
	assert.Equal(t, BadgeComplete, byID[full.ID].Badge)

	// Badge filter keeps only matching study posts.
	page, err = svc.ListFeed(context.Background(), ListFeedInput{Category: "study", Badge: BadgeComplete})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, full.ID, page.Items[0].ID)
}

func TestListFeedAttachmentFlagAndLiked(t *testing.T) {
	svc, db := newFeedService(t)
	testutil.SeedUser(t, db, 1, "alice")
	plain := testutil.SeedPost(t, db, 1, models.CategoryFree, "plain")
	withFile := testutil.SeedPost(t, db, 1, models.CategoryShare, "with file")
	require.NoError(t, db.Create(&models.Attachment{
		PostID: withFile.ID, Kind: models.AttachmentFile, FileName: "a.pdf",
		StorageKey: "k", URL: "http://x/media/k", ContentType: "application/pdf", ByteSize: 10,
	}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: plain.ID, UserID: 1}).Error)

	page, err := svc.ListFeed(context.Background(), ListFeedInput{CurrentUserID: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, p := range page.Items {
		switch p.ID {
		case plain.ID:
			assert.False(t, p.HasAttachments)
			assert.True(t, p.Liked)
		case withFile.ID:
			assert.True(t, p.HasAttachments)
			assert.False(t, p.Liked)
		}
	}
}

func TestListFeedSearchScope(t *testing.T) {
	svc, db := newFeedService(t)
	testutil.SeedUser(t, db, 1, "alice")
	testutil.SeedPost(t, db, 1, models.CategoryFree, "Golang tips")
	other := testutil.SeedPost(t, db, 1, models.CategoryFree, "unrelated")
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", other.ID).
		Update("content", "all about golang internals").Error)
	ctx := context.Background()

	page, err := svc.ListFeed(ctx, ListFeedInput{Query: "golang", Scope: "title"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = svc.ListFeed(ctx, ListFeedInput{Query: "golang"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestListFeedEmptyResultIsValid(t *testing.T) {
	svc, _ := newFeedService(t)
	page, err := svc.ListFeed(context.Background(), ListFeedInput{Category: "study"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count)
	assert.Nil(t, page.NextCursor)
	assert.Empty(t, page.Items)
}
