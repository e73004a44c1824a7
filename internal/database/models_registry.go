package database

import (
	"moim/internal/models"

	"gorm.io/gorm"
)

// MigratedModels lists every entity AutoMigrate manages, in dependency
// order (referenced tables first).
func MigratedModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.StudyRecruitment{},
		&models.StudyApplication{},
		&models.Comment{},
		&models.Like{},
		&models.Attachment{},
		&models.Notification{},
		&models.PostViewDaily{},
		&models.AIDraft{},
	}
}

// Migrate runs AutoMigrate for the full model registry.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(MigratedModels()...)
}
