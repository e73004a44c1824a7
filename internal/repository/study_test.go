package repository

import (
	"context"
	"testing"

	"moim/internal/models"
	"moim/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyRepository_ApplicationUniquePerPostAndUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStudyRepository(db)
	testutil.SeedUser(t, db, 1, "owner")
	testutil.SeedUser(t, db, 2, "applicant")
	post := testutil.SeedPost(t, db, 1, models.CategoryStudy, "study")
	ctx := context.Background()

	require.NoError(t, repo.CreateApplication(ctx, &models.StudyApplication{PostID: post.ID, UserID: 2}))
	err := repo.CreateApplication(ctx, &models.StudyApplication{PostID: post.ID, UserID: 2})
	assert.Error(t, err)
}

func TestStudyRepository_ApprovedCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStudyRepository(db)
	testutil.SeedUser(t, db, 1, "owner")
	for i := uint(2); i <= 5; i++ {
		testutil.SeedUser(t, db, i, "applicant")
	}
	postA := testutil.SeedPost(t, db, 1, models.CategoryStudy, "study-a")
	postB := testutil.SeedPost(t, db, 1, models.CategoryStudy, "study-b")
	ctx := context.Background()

	apps := []*models.StudyApplication{
		{PostID: postA.ID, UserID: 2, Status: models.ApplicationApproved},
		{PostID: postA.ID, UserID: 3, Status: models.ApplicationApproved},
		{PostID: postA.ID, UserID: 4, Status: models.ApplicationPending},
		{PostID: postB.ID, UserID: 5, Status: models.ApplicationRejected},
	}
	for _, app := range apps {
		require.NoError(t, repo.CreateApplication(ctx, app))
	}

	count, err := repo.ApprovedCount(ctx, postA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	counts, err := repo.ApprovedCounts(ctx, []uint{postA.ID, postB.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[postA.ID])
	assert.Zero(t, counts[postB.ID])
}

func TestStudyRepository_RecruitmentBatchLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStudyRepository(db)
	testutil.SeedUser(t, db, 1, "owner")
	postA := testutil.SeedPost(t, db, 1, models.CategoryStudy, "a")
	postB := testutil.SeedPost(t, db, 1, models.CategoryStudy, "b")
	ctx := context.Background()

	require.NoError(t, db.Create(&models.StudyRecruitment{PostID: postA.ID, MaxMember: 3}).Error)

	recs, err := repo.GetRecruitmentsByPosts(ctx, []uint{postA.ID, postB.ID})
	require.NoError(t, err)
	require.Contains(t, recs, postA.ID)
	assert.NotContains(t, recs, postB.ID)
	assert.Equal(t, 3, recs[postA.ID].MaxMember)
}
