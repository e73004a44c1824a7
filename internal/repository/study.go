// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"moim/internal/models"

	"gorm.io/gorm"
)

// StudyRepository covers recruitment rows and membership applications.
type StudyRepository interface {
	GetRecruitmentByPost(ctx context.Context, postID uint) (*models.StudyRecruitment, error)
	GetRecruitmentsByPosts(ctx context.Context, postIDs []uint) (map[uint]*models.StudyRecruitment, error)
	UpdateRecruitment(ctx context.Context, rec *models.StudyRecruitment) error

	CreateApplication(ctx context.Context, app *models.StudyApplication) error
	GetApplication(ctx context.Context, id uint) (*models.StudyApplication, error)
	GetApplicationByPostAndUser(ctx context.Context, postID, userID uint) (*models.StudyApplication, error)
	UpdateApplication(ctx context.Context, app *models.StudyApplication) error
	ListApplicationsByPost(ctx context.Context, postID uint) ([]*models.StudyApplication, error)
	ListApplicationsByUser(ctx context.Context, userID uint) ([]*models.StudyApplication, error)
	ApprovedCount(ctx context.Context, postID uint) (int64, error)
	ApprovedCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

type studyRepository struct {
	db *gorm.DB
}

// NewStudyRepository creates a new StudyRepository
func NewStudyRepository(db *gorm.DB) StudyRepository {
	return &studyRepository{db: db}
}

func (r *studyRepository) GetRecruitmentByPost(ctx context.Context, postID uint) (*models.StudyRecruitment, error) {
	var rec models.StudyRecruitment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *studyRepository) GetRecruitmentsByPosts(ctx context.Context, postIDs []uint) (map[uint]*models.StudyRecruitment, error) {
	result := make(map[uint]*models.StudyRecruitment, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var recs []*models.StudyRecruitment
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&recs).Error; err != nil {
		return nil, err
	}
	for _, rec := range recs {
		result[rec.PostID] = rec
	}
	return result, nil
}

func (r *studyRepository) UpdateRecruitment(ctx context.Context, rec *models.StudyRecruitment) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *studyRepository) CreateApplication(ctx context.Context, app *models.StudyApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *studyRepository) GetApplication(ctx context.Context, id uint) (*models.StudyApplication, error) {
	var app models.StudyApplication
	if err := r.db.WithContext(ctx).Preload("User").First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *studyRepository) GetApplicationByPostAndUser(ctx context.Context, postID, userID uint) (*models.StudyApplication, error) {
	var app models.StudyApplication
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *studyRepository) UpdateApplication(ctx context.Context, app *models.StudyApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r *studyRepository) ListApplicationsByPost(ctx context.Context, postID uint) ([]*models.StudyApplication, error) {
	var apps []*models.StudyApplication
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&apps).Error
	return apps, err
}

func (r *studyRepository) ListApplicationsByUser(ctx context.Context, userID uint) ([]*models.StudyApplication, error) {
	var apps []*models.StudyApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&apps).Error
	return apps, err
}

func (r *studyRepository) ApprovedCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StudyApplication{}).
		Where("post_id = ? AND status = ?", postID, models.ApplicationApproved).
		Count(&count).Error
	return count, err
}

func (r *studyRepository) ApprovedCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	rows := []struct {
		PostID uint
		N      int64
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.StudyApplication{}).
		Select("post_id, COUNT(*) as n").
		Where("post_id IN ? AND status = ?", postIDs, models.ApplicationApproved).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.N
	}
	return result, nil
}
