package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/observability"
	"moim/internal/repository"
)

const maxCommentLen = 2000

// CommentService implements threaded comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment adds a comment, optionally as a reply. The parent must
// belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, postID, userID uint, parentID *uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment is too long")
	}

	if _, err := s.postRepo.GetActiveByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment", *parentID)
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != postID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// ListComments returns a page of a post's comments. oldestFirst selects
// ascending id order; offset/limit paging, unlike the cursor feed.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int, oldestFirst bool) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.postRepo.GetActiveByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	list, err := s.commentRepo.ListByPost(ctx, postID, limit, offset, oldestFirst)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// UpdateComment rewrites a comment's content. Author-only.
func (s *CommentService) UpdateComment(ctx context.Context, id, userID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment is too long")
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.UserID != userID {
		return nil, models.NewUnauthorizedError("Only the author can update this comment")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

// DeleteComment removes a comment and its whole reply subtree, keeping
// the post's comment counter consistent. Author-only; replies by other
// users go down with the thread.
func (s *CommentService) DeleteComment(ctx context.Context, id, userID uint) (int, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Comment", id)
		}
		return 0, models.NewInternalError(err)
	}
	if comment.UserID != userID {
		return 0, models.NewUnauthorizedError("Only the author can delete this comment")
	}

	deleted, err := s.commentRepo.DeleteTree(ctx, comment)
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	observability.NewRepoLogger("comments").LogMutation(ctx, "delete_tree", map[string]interface{}{
		"comment_id": id,
		"post_id":    comment.PostID,
		"deleted":    deleted,
	})
	return deleted, nil
}
