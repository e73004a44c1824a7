package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/observability"
	"moim/internal/repository"
	"moim/internal/storage"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// PostService implements post lifecycle and like toggling.
type PostService struct {
	postRepo      repository.PostRepository
	studyRepo     repository.StudyRepository
	attachRepo    repository.AttachmentRepository
	notifications *NotificationService
	store         storage.ObjectStorage
	now           func() time.Time
}

// NewPostService creates a new PostService. store may be nil when no
// object storage is configured; blob cleanup is then skipped.
func NewPostService(
	postRepo repository.PostRepository,
	studyRepo repository.StudyRepository,
	attachRepo repository.AttachmentRepository,
	notifications *NotificationService,
	store storage.ObjectStorage,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		studyRepo:     studyRepo,
		attachRepo:    attachRepo,
		notifications: notifications,
		store:         store,
		now:           time.Now,
	}
}

// CreatePostInput carries everything needed to create a post. Recruitment
// is required for study posts and forbidden elsewhere.
type CreatePostInput struct {
	UserID      uint
	Title       string
	Content     string
	Category    models.Category
	Recruitment *models.StudyRecruitment
}

// CreatePost validates and stores a post together with its category
// extension in one transaction.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError(fmt.Sprintf("Title must be at most %d characters", maxTitleLen))
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content is too long")
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.NewValidationError("Invalid category")
	}

	if in.Category == models.CategoryStudy {
		if in.Recruitment == nil {
			return nil, models.NewValidationError("Study posts require a recruitment window")
		}
		if err := in.Recruitment.ValidateWindow(); err != nil {
			return nil, err
		}
	} else if in.Recruitment != nil {
		return nil, models.NewValidationError("Only study posts carry a recruitment window")
	}

	post := &models.Post{
		UserID:   in.UserID,
		Title:    title,
		Content:  content,
		Category: in.Category,
		Active:   true,
	}
	if err := s.postRepo.Create(ctx, post, in.Recruitment); err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.NewRepoLogger("posts").LogMutation(ctx, "create", map[string]interface{}{
		"post_id":  post.ID,
		"user_id":  in.UserID,
		"category": string(in.Category),
	})

	return s.GetPost(ctx, post.ID, in.UserID)
}

// GetPost returns an active post with its extension data, derived badge
// and the requesting user's liked flag. currentUserID of zero means an
// anonymous read.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	switch post.Category {
	case models.CategoryStudy:
		if post.Recruitment != nil {
			approved, err := s.studyRepo.ApprovedCount(ctx, post.ID)
			if err != nil {
				return nil, models.NewInternalError(err)
			}
			rec := post.Recruitment
			post.Badge = Badge(s.now(), rec.RecruitStart, rec.RecruitEnd, rec.MaxMember, approved)
		}
	case models.CategoryFree, models.CategoryShare:
		count, err := s.attachRepo.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.HasAttachments = count > 0
	}

	if currentUserID != 0 {
		liked, err := s.postRepo.IsLiked(ctx, currentUserID, post.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.Liked = liked
	}

	return post, nil
}

// UpdatePost applies a partial update. Only the author may update, the
// category never changes, and an empty patch is rejected. For study posts
// the recruitment patch is validated against the merged window before
// anything is written.
func (s *PostService) UpdatePost(
	ctx context.Context,
	id, userID uint,
	patch models.PostPatch,
	recPatch *models.RecruitmentPatch,
) (*models.Post, error) {
	post, err := s.postRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if post.UserID != userID {
		return nil, models.NewUnauthorizedError("Only the author can update this post")
	}

	recEmpty := recPatch == nil || recPatch.Empty()
	if patch.Empty() && recEmpty {
		return nil, models.NewValidationError("Update must change at least one field")
	}
	if !recEmpty && post.Category != models.CategoryStudy {
		return nil, models.NewValidationError("Only study posts carry a recruitment window")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, models.NewValidationError("Title must not be empty")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError(fmt.Sprintf("Title must be at most %d characters", maxTitleLen))
		}
		post.Title = title
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, models.NewValidationError("Content must not be empty")
		}
		if len(content) > maxContentLen {
			return nil, models.NewValidationError("Content is too long")
		}
		post.Content = content
	}

	var rec *models.StudyRecruitment
	if !recEmpty {
		rec = post.Recruitment
		if rec == nil {
			return nil, models.NewNotFoundError("Recruitment for post", id)
		}
		if recPatch.RecruitStart != nil {
			rec.RecruitStart = *recPatch.RecruitStart
		}
		if recPatch.RecruitEnd != nil {
			rec.RecruitEnd = *recPatch.RecruitEnd
		}
		if recPatch.StudyStart != nil {
			rec.StudyStart = *recPatch.StudyStart
		}
		if recPatch.StudyEnd != nil {
			rec.StudyEnd = *recPatch.StudyEnd
		}
		if recPatch.MaxMember != nil {
			rec.MaxMember = *recPatch.MaxMember
		}
		if err := rec.ValidateWindow(); err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	if rec != nil {
		if err := s.studyRepo.UpdateRecruitment(ctx, rec); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return s.GetPost(ctx, id, userID)
}

// DeletePost removes the post and every dependent row, then best-effort
// deletes the attachment blobs. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, id, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("Only the author can delete this post")
	}

	keys, err := s.postRepo.DeleteCascade(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}

	// Blob cleanup happens after commit; an orphaned object is cheaper
	// than a row pointing at a missing one.
	if s.store != nil {
		for _, key := range keys {
			if err := s.store.Delete(ctx, key); err != nil {
				observability.GlobalLogger.LogAttrs(ctx, slog.LevelWarn, "orphaned attachment blob",
					slog.Uint64("post_id", uint64(id)),
					slog.String("storage_key", key),
					slog.String("error", err.Error()))
			}
		}
	}

	observability.NewRepoLogger("posts").LogMutation(ctx, "delete", map[string]interface{}{
		"post_id": id,
		"user_id": userID,
	})
	return nil
}

// LikeResult is the outcome of one like toggle.
type LikeResult struct {
	PostID    uint            `json:"post_id"`
	Category  models.Category `json:"category"`
	LikeCount int             `json:"like_count"`
	Liked     bool            `json:"liked"`
	Message   string          `json:"message"`
}

// ToggleLike flips the caller's like on a post. On the "like added"
// branch the post owner gets a notification unless they liked their own
// post or an identical unread like notification already exists.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	liked, likeCount, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	message := "좋아요를 취소했습니다"
	if liked {
		message = "좋아요를 눌렀습니다"
		s.notifyLike(ctx, post, userID)
	}

	return &LikeResult{
		PostID:    postID,
		Category:  post.Category,
		LikeCount: likeCount,
		Liked:     liked,
		Message:   message,
	}, nil
}

// notifyLike is a side effect of a successful like; it never fails the
// toggle. Re-like spam is suppressed while an unread like notification
// from the same actor for the same post exists.
func (s *PostService) notifyLike(ctx context.Context, post *models.Post, actorID uint) {
	if s.notifications == nil || post.UserID == actorID {
		return
	}

	exists, err := s.notifications.repo.HasUnreadLikeFrom(ctx, post.UserID, actorID, post.ID)
	if err != nil {
		observability.GlobalLogger.LogAttrs(ctx, slog.LevelWarn, "like notification dedupe check failed",
			slog.Uint64("post_id", uint64(post.ID)), slog.String("error", err.Error()))
		return
	}
	if exists {
		return
	}

	actor := actorID
	pid := post.ID
	n := &models.Notification{
		UserID:  post.UserID,
		ActorID: &actor,
		PostID:  &pid,
		Type:    models.NotificationLike,
		Message: fmt.Sprintf("'%s' 글에 좋아요가 달렸습니다", truncateRunes(post.Title, 50)),
	}
	if _, err := s.notifications.Notify(ctx, n); err != nil {
		observability.GlobalLogger.LogAttrs(ctx, slog.LevelWarn, "like notification failed",
			slog.Uint64("post_id", uint64(post.ID)), slog.String("error", err.Error()))
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
