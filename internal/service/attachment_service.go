package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/repository"
	"moim/internal/storage"
)

const (
	maxAttachmentsPerPost = 10
	maxAttachmentBytes    = 15 * 1024 * 1024
)

// Per-kind extension and MIME allow-lists. Free-board posts carry
// images, share-board posts carry documents.
var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	fileExtensions  = map[string]bool{".pdf": true, ".docx": true}

	imageMIMEs = map[string]bool{"image/jpeg": true, "image/png": true}
	fileMIMEs = map[string]bool{
		"application/pdf": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
)

// AttachmentService manages the upload and removal of post attachments
// against object storage, enforcing the per-post quotas.
type AttachmentService struct {
	attachRepo repository.AttachmentRepository
	postRepo   repository.PostRepository
	store      storage.ObjectStorage
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(
	attachRepo repository.AttachmentRepository,
	postRepo repository.PostRepository,
	store storage.ObjectStorage,
) *AttachmentService {
	return &AttachmentService{attachRepo: attachRepo, postRepo: postRepo, store: store}
}

// UploadInput is one file upload.
type UploadInput struct {
	PostID      uint
	UserID      uint
	FileName    string
	ContentType string
	Data        []byte
}

// Upload validates and stores one attachment. Checks run in a fixed
// order so clients get the most specific rejection: existence, ownership,
// extension, MIME, emptiness, count quota, byte quota. The blob goes to
// object storage first; if the metadata insert then fails, the orphaned
// object is removed best-effort.
func (s *AttachmentService) Upload(ctx context.Context, in UploadInput) (*models.Attachment, error) {
	post, err := s.postRepo.GetActiveByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	var kind models.AttachmentKind
	switch post.Category {
	case models.CategoryFree:
		kind = models.AttachmentImage
	case models.CategoryShare:
		kind = models.AttachmentFile
	default:
		return nil, models.NewValidationError("Study posts do not accept attachments")
	}

	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("Only the author can attach files to this post")
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	allowedExt := imageExtensions
	allowedMIME := imageMIMEs
	if kind == models.AttachmentFile {
		allowedExt = fileExtensions
		allowedMIME = fileMIMEs
	}
	if !allowedExt[ext] {
		return nil, models.NewValidationError(fmt.Sprintf("File type %q is not allowed for %s posts", ext, post.Category))
	}
	if !allowedMIME[in.ContentType] {
		return nil, models.NewValidationError(fmt.Sprintf("Content type %q is not allowed for %s posts", in.ContentType, post.Category))
	}
	if len(in.Data) == 0 {
		return nil, models.NewValidationError("Uploaded file is empty")
	}

	count, err := s.attachRepo.CountByPost(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if count >= maxAttachmentsPerPost {
		return nil, models.NewValidationError(fmt.Sprintf("A post can hold at most %d attachments", maxAttachmentsPerPost))
	}

	total, err := s.attachRepo.TotalBytesByPost(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if total+int64(len(in.Data)) > maxAttachmentBytes {
		return nil, models.NewValidationError("Attachment byte budget exceeded for this post")
	}

	key := fmt.Sprintf("%s-%s%s", kind, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, in.Data, in.ContentType)
	if err != nil {
		return nil, models.NewUpstreamError("Object storage upload failed", err, true, 0)
	}

	attachment := &models.Attachment{
		PostID:      in.PostID,
		Kind:        kind,
		FileName:    in.FileName,
		StorageKey:  key,
		URL:         url,
		ContentType: in.ContentType,
		ByteSize:    int64(len(in.Data)),
	}
	if err := s.attachRepo.Create(ctx, attachment); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, models.NewInternalError(err)
	}
	return attachment, nil
}

// List returns a post's attachments.
func (s *AttachmentService) List(ctx context.Context, postID uint) ([]*models.Attachment, error) {
	if _, err := s.postRepo.GetActiveByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	list, err := s.attachRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// Delete removes one attachment. Owner-only; the metadata row goes first
// and the blob after, so a storage failure cannot resurrect the record.
func (s *AttachmentService) Delete(ctx context.Context, postID, userID, attachmentID uint) error {
	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("Only the author can delete attachments")
	}

	attachment, err := s.attachRepo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Attachment", attachmentID)
		}
		return models.NewInternalError(err)
	}
	if attachment.PostID != postID {
		return models.NewNotFoundError("Attachment", attachmentID)
	}

	if err := s.attachRepo.Delete(ctx, attachmentID); err != nil {
		return models.NewInternalError(err)
	}
	_ = s.store.Delete(ctx, attachment.StorageKey)
	return nil
}
