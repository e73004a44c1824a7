// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"moim/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int, oldestFirst bool) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteTree(ctx context.Context, comment *models.Comment) (int, error)
	DescendantIDs(ctx context.Context, rootID uint) ([]uint, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the post's counter in one
// transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`,
			comment.PostID,
		).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(
	ctx context.Context,
	postID uint,
	limit, offset int,
	oldestFirst bool,
) ([]*models.Comment, error) {
	order := "id DESC"
	if oldestFirst {
		order = "id ASC"
	}
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DescendantIDs walks the parent-pointer tree breadth-first, level by
// level, and returns every comment id reachable below rootID. No depth
// limit is assumed.
func (r *commentRepository) DescendantIDs(ctx context.Context, rootID uint) ([]uint, error) {
	var all []uint
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var next []uint
		err := r.db.WithContext(ctx).
			Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error
		if err != nil {
			return nil, err
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

// DeleteTree deletes the comment and all of its descendants and
// decrements the post's comment_count by the number of rows removed.
// The descendants are collected before the delete executes; afterwards
// they would be gone and uncountable. The decrement is floor-clamped at
// zero to tolerate prior drift. Returns the number of deleted comments.
func (r *commentRepository) DeleteTree(ctx context.Context, comment *models.Comment) (int, error) {
	descendants, err := r.DescendantIDs(ctx, comment.ID)
	if err != nil {
		return 0, err
	}

	ids := append([]uint{comment.ID}, descendants...)
	total := len(ids)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE posts SET comment_count = CASE WHEN comment_count < ? THEN 0 ELSE comment_count - ? END WHERE id = ?`,
			total, total, comment.PostID,
		).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
