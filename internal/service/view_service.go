package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/repository"
)

// ViewService records post views and serves the trailing-7-day ranking.
type ViewService struct {
	viewRepo repository.ViewRepository
	now      func() time.Time
}

// NewViewService creates a new ViewService.
func NewViewService(viewRepo repository.ViewRepository) *ViewService {
	return &ViewService{viewRepo: viewRepo, now: time.Now}
}

// RecordView bumps the lifetime counter and the per-day row for a post.
func (s *ViewService) RecordView(ctx context.Context, postID uint) error {
	if err := s.viewRepo.Increment(ctx, postID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// WeeklyRanking returns the top posts of a category by views over the
// trailing 7 calendar days, today inclusive.
func (s *ViewService) WeeklyRanking(ctx context.Context, category string, limit int) ([]models.WeeklyRank, error) {
	c := models.Category(category)
	if !models.ValidCategory(c) {
		return nil, models.NewValidationError("Invalid category")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	ranks, err := s.viewRepo.WeeklyTop(ctx, c, limit, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ranks, nil
}
