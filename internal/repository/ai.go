// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"moim/internal/models"

	"gorm.io/gorm"
)

// AIDraftRepository persists prompt/response pairs from the drafting service.
type AIDraftRepository interface {
	Create(ctx context.Context, d *models.AIDraft) error
	GetByID(ctx context.Context, id uint) (*models.AIDraft, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AIDraft, error)
	Delete(ctx context.Context, id uint) error
}

type aiDraftRepository struct {
	db *gorm.DB
}

// NewAIDraftRepository creates a new AIDraftRepository
func NewAIDraftRepository(db *gorm.DB) AIDraftRepository {
	return &aiDraftRepository{db: db}
}

func (r *aiDraftRepository) Create(ctx context.Context, d *models.AIDraft) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *aiDraftRepository) GetByID(ctx context.Context, id uint) (*models.AIDraft, error) {
	var d models.AIDraft
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *aiDraftRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AIDraft, error) {
	var list []*models.AIDraft
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *aiDraftRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.AIDraft{}, id).Error
}
