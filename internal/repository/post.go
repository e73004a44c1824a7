// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"moim/internal/models"

	"gorm.io/gorm"
)

// SearchScope narrows free-text search to a subset of post fields.
type SearchScope string

const (
	ScopeAll     SearchScope = "all"
	ScopeTitle   SearchScope = "title"
	ScopeContent SearchScope = "content"
)

// FeedQuery describes one page of the cursor-paginated post listing.
// Cursor is the id of the last item of the previous page; zero means
// "from the newest post".
type FeedQuery struct {
	Category models.Category // empty selects every category
	Query    string
	Scope    SearchScope
	Cursor   uint
	Limit    int
	AuthorID uint
	From     *time.Time
	To       *time.Time
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, recruitment *models.StudyRecruitment) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Post, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteCascade(ctx context.Context, id uint) ([]string, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, likeCount int, err error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and, for study posts, its recruitment row in
// one transaction so the extension can never exist without the post.
func (r *postRepository) Create(ctx context.Context, post *models.Post, recruitment *models.StudyRecruitment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if recruitment != nil {
			recruitment.PostID = post.ID
			if err := tx.Create(recruitment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Recruitment").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Recruitment").
		Where("active = ?", true).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFeed returns one cursor page: strictly id < cursor, newest first.
// New rows get larger ids, so pages already cursored past never shift.
func (r *postRepository) ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	db := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Preload("User").
		Where("active = ?", true)

	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.AuthorID != 0 {
		db = db.Where("user_id = ?", q.AuthorID)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at < ?", *q.To)
	}
	if q.Cursor != 0 {
		db = db.Where("id < ?", q.Cursor)
	}
	if q.Query != "" {
		like := "%" + strings.ToLower(q.Query) + "%"
		switch q.Scope {
		case ScopeTitle:
			db = db.Where("LOWER(title) LIKE ?", like)
		case ScopeContent:
			db = db.Where("LOWER(content) LIKE ?", like)
		default:
			db = db.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
		}
	}

	var posts []*models.Post
	err := db.Order("id DESC").Limit(q.Limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// DeleteCascade removes the post and every dependent row in one
// transaction (application-level cascade; no reliance on FK behavior).
// It returns the storage keys of deleted attachments so the caller can
// clean up object storage best-effort after commit.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Attachment{}).
			Where("post_id = ?", id).
			Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&models.Attachment{},
			&models.StudyRecruitment{},
			&models.StudyApplication{},
			&models.Comment{},
			&models.Like{},
			&models.Notification{},
			&models.PostViewDaily{},
		} {
			if err := tx.Where("post_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	return likedPostIDs, err
}

// ToggleLike atomically flips the like row and the counter. A race on
// the same (user, post) pair is resolved by the unique constraint: the
// losing insert fails the transaction instead of corrupting the count.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	var liked bool
	var likeCount int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				`UPDATE posts SET like_count = CASE WHEN like_count < 1 THEN 0 ELSE like_count - 1 END WHERE id = ?`,
				postID,
			).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`,
				postID,
			).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		return tx.Model(&models.Post{}).
			Select("like_count").
			Where("id = ?", postID).
			Scan(&likeCount).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likeCount, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
