// Package models contains data structures for the application's domain models.
package models

import "time"

// Category identifies which board a post belongs to. It is fixed at
// creation time; a post is never re-categorized.
type Category string

const (
	// CategoryStudy is the study-group recruitment board.
	CategoryStudy Category = "study"
	// CategoryFree is the free discussion board.
	CategoryFree Category = "free"
	// CategoryShare is the file/data sharing board.
	CategoryShare Category = "share"
)

// ValidCategory reports whether c is one of the three boards.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryStudy, CategoryFree, CategoryShare:
		return true
	}
	return false
}

// Post is a board post. ViewCount, LikeCount and CommentCount are
// server-maintained counters; they are mutated only through the dedicated
// repository operations, never by direct assignment, so they stay
// consistent with the rows they summarize.
type Post struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	UserID       uint     `gorm:"not null;index" json:"user_id"`
	User         User     `gorm:"foreignKey:UserID" json:"user"`
	Title        string   `gorm:"size:300;not null" json:"title"`
	Content      string   `gorm:"type:text;not null" json:"content"`
	Category     Category `gorm:"size:16;not null;index" json:"category"`
	ViewCount    int      `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int      `gorm:"not null;default:0" json:"like_count"`
	CommentCount int      `gorm:"not null;default:0" json:"comment_count"`
	Active       bool     `gorm:"not null;default:true" json:"active"`

	Recruitment *StudyRecruitment `gorm:"foreignKey:PostID" json:"recruitment,omitempty"`

	// Liked indicates whether the requesting user liked this post (computed).
	Liked bool `gorm:"-" json:"liked"`
	// Badge is the derived recruitment label for study posts (computed).
	Badge string `gorm:"-" json:"badge,omitempty"`
	// HasAttachments flags free/share posts that carry files (computed).
	HasAttachments bool `gorm:"-" json:"has_attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostPatch enumerates the fields an update may change. Nil means "leave
// untouched"; each present field is validated independently before any
// of them is applied.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}
