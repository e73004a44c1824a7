package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/repository"
	"moim/internal/testutil"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "http://test/media/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func newAttachmentService(t *testing.T) (*AttachmentService, *memoryStorage, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := newMemoryStorage()
	svc := NewAttachmentService(
		repository.NewAttachmentRepository(db),
		repository.NewPostRepository(db),
		store,
	)
	return svc, store, db
}

func TestUploadImageToFreePost(t *testing.T) {
	svc, store, db := newAttachmentService(t)
	testutil.SeedUser(t, db, 1, "alice")
	post := testutil.SeedPost(t, db, 1, models.CategoryFree, "photo post")

	att, err := svc.Upload(context.Background(), UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "cat.png", ContentType: "image/png", Data: []byte("png bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentImage, att.Kind)
	assert.Contains(t, att.URL, "/media/")
	assert.Equal(t, int64(9), att.ByteSize)
	assert.Len(t, store.objects, 1)
}

func TestUploadChecksRunInOrder(t *testing.T) {
	svc, _, db := newAttachmentService(t)
	testutil.SeedUser(t, db, 1, "alice")
	testutil.SeedUser(t, db, 2, "bob")
	free := testutil.SeedPost(t, db, 1, models.CategoryFree, "free")
	study := testutil.SeedPost(t, db, 1, models.CategoryStudy, "study")
	ctx := context.Background()

	// Missing post.
	_, err := svc.Upload(ctx, UploadInput{PostID: 999, UserID: 1, FileName: "a.png", ContentType: "image/png", Data: []byte("x")})
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)

	// Study posts take no attachments.
	_, err = svc.Upload(ctx, UploadInput{PostID: study.ID, UserID: 1, FileName: "a.png", ContentType: "image/png", Data: []byte("x")})
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	// Non-owner.
	_, err = svc.Upload(ctx, UploadInput{PostID: free.ID, UserID: 2, FileName: "a.png", ContentType: "image/png", Data: []byte("x")})
	assert.Equal(t, models.CodeUnauthorized, err.(*models.AppError).Code)

	// Wrong extension for the board.
	_, err = svc.Upload(ctx, UploadInput{PostID: free.ID, UserID: 1, FileName: "a.pdf", ContentType: "application/pdf", Data: []byte("x")})
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	// Extension fine, MIME not.
	_, err = svc.Upload(ctx, UploadInput{PostID: free.ID, UserID: 1, FileName: "a.png", ContentType: "image/webp", Data: []byte("x")})
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	// Empty payload.
	_, err = svc.Upload(ctx, UploadInput{PostID: free.ID, UserID: 1, FileName: "a.png", ContentType: "image/png", Data: nil})
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestUploadCountQuota(t *testing.T) {
	svc, _, db := newAttachmentService(t)
	testutil.SeedUser(t, db, 1, "alice")
	post := testutil.SeedPost(t, db, 1, models.CategoryShare, "files")
	ctx := context.Background()

	for i := 0; i < maxAttachmentsPerPost; i++ {
		_, err := svc.Upload(ctx, UploadInput{
			PostID: post.ID, UserID: 1,
			FileName: "doc.pdf", ContentType: "application/pdf", Data: []byte("d"),
		})
		require.NoError(t, err)
	}

	_, err := svc.Upload(ctx, UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "doc.pdf", ContentType: "application/pdf", Data: []byte("d"),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestUploadByteBudgetBoundary(t *testing.T) {
	svc, _, db := newAttachmentService(t)
	testutil.SeedUser(t, db, 1, "alice")
	post := testutil.SeedPost(t, db, 1, models.CategoryShare, "big files")
	ctx := context.Background()

	half := bytes.Repeat([]byte("x"), maxAttachmentBytes/2)
	_, err := svc.Upload(ctx, UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "a.pdf", ContentType: "application/pdf", Data: half,
	})
	require.NoError(t, err)

	// Exactly at the budget: accepted.
	_, err = svc.Upload(ctx, UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "b.pdf", ContentType: "application/pdf", Data: half,
	})
	require.NoError(t, err)

	// One byte over: rejected.
	_, err = svc.Upload(ctx, UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "c.pdf", ContentType: "application/pdf", Data: []byte("x"),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestDeleteAttachment(t *testing.T) {
	svc, store, db := newAttachmentService(t)
	testutil.SeedUser(t, db, 1, "alice")
	testutil.SeedUser(t, db, 2, "bob")
	post := testutil.SeedPost(t, db, 1, models.CategoryFree, "photos")
	ctx := context.Background()

	att, err := svc.Upload(ctx, UploadInput{
		PostID: post.ID, UserID: 1,
		FileName: "cat.jpg", ContentType: "image/jpeg", Data: []byte("jpeg"),
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, post.ID, 2, att.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, err.(*models.AppError).Code)

	require.NoError(t, svc.Delete(ctx, post.ID, 1, att.ID))
	assert.Empty(t, store.objects)

	list, err := svc.List(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
