// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"moim/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewRepository maintains lifetime and per-day view counters.
type ViewRepository interface {
	Increment(ctx context.Context, postID uint, now time.Time) error
	WeeklyTop(ctx context.Context, category models.Category, limit int, now time.Time) ([]models.WeeklyRank, error)
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new ViewRepository
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

// Increment bumps the lifetime counter and upserts the per-day row in a
// single transaction. Fails with gorm.ErrRecordNotFound semantics when
// the post does not exist or is inactive.
func (r *viewRepository) Increment(ctx context.Context, postID uint, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE posts SET view_count = view_count + 1 WHERE id = ? AND active = ?`,
			postID, true,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_id"}, {Name: "view_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"views": gorm.Expr("post_view_dailies.views + 1"),
			}),
		}).Create(&models.PostViewDaily{
			PostID:   postID,
			ViewDate: models.ViewDate(now),
			Views:    1,
		}).Error
	})
}

// WeeklyTop sums per-day views over the trailing 7 days inclusive of
// today, restricted to active posts of the category, ordered by summed
// views descending with post id descending breaking ties.
func (r *viewRepository) WeeklyTop(ctx context.Context, category models.Category, limit int, now time.Time) ([]models.WeeklyRank, error) {
	if !models.ValidCategory(category) {
		return nil, errors.New("invalid category")
	}
	since := models.ViewDate(now.AddDate(0, 0, -6))

	var ranks []models.WeeklyRank
	err := r.db.WithContext(ctx).
		Table("post_view_dailies").
		Select("posts.id AS post_id, posts.title AS title, posts.category AS category, SUM(post_view_dailies.views) AS weekly_views").
		Joins("JOIN posts ON posts.id = post_view_dailies.post_id").
		Where("post_view_dailies.view_date >= ?", since).
		Where("posts.category = ? AND posts.active = ?", category, true).
		Group("posts.id, posts.title, posts.category").
		Order("weekly_views DESC, post_id DESC").
		Limit(limit).
		Scan(&ranks).Error
	return ranks, err
}
