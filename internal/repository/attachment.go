// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"moim/internal/models"

	"gorm.io/gorm"
)

// AttachmentRepository defines interface for attachment metadata rows.
type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) error
	GetByID(ctx context.Context, id uint) (*models.Attachment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Attachment, error)
	PostIDsWithAttachments(ctx context.Context, postIDs []uint) (map[uint]bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	TotalBytesByPost(ctx context.Context, postID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *models.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	var a models.Attachment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Attachment, error) {
	var list []*models.Attachment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *attachmentRepository) PostIDsWithAttachments(ctx context.Context, postIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("post_id IN ?", postIDs).
		Distinct().
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *attachmentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *attachmentRepository) TotalBytesByPost(ctx context.Context, postID uint) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("post_id = ?", postID).
		Select("SUM(byte_size)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, id).Error
}
