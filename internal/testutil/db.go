// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"

	"moim/internal/database"
	"moim/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory sqlite database with the full
// schema migrated. Each call returns a fresh database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// An in-memory sqlite database exists per connection; pin the pool to
	// one connection so every query sees the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// SeedUser inserts a user row for foreign keys and response shaping.
func SeedUser(t *testing.T, db *gorm.DB, id uint, nickname string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Nickname: nickname}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedPost inserts an active post in the given category.
func SeedPost(t *testing.T, db *gorm.DB, userID uint, category models.Category, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:   userID,
		Title:    title,
		Content:  "content of " + title,
		Category: category,
		Active:   true,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}
