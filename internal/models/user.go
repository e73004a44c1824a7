// Package models contains data structures for the application's domain models.
package models

import "time"

// User mirrors the externally managed identity. The service never creates
// or authenticates users itself; rows exist so foreign keys resolve and
// responses can carry author nicknames.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Nickname        string    `gorm:"size:64;not null" json:"nickname"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}
