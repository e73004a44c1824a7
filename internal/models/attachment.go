package models

import "time"

// AttachmentKind separates free-board images from share-board files.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment records one uploaded object for a post: the object-storage
// key, the publicly resolvable URL and enough metadata to enforce the
// per-post quotas.
type Attachment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PostID      uint           `gorm:"not null;index" json:"post_id"`
	Kind        AttachmentKind `gorm:"size:16;not null" json:"kind"`
	FileName    string         `gorm:"size:255;not null" json:"file_name"`
	StorageKey  string         `gorm:"size:255;not null" json:"-"`
	URL         string         `gorm:"not null" json:"url"`
	ContentType string         `gorm:"size:128;not null" json:"content_type"`
	ByteSize    int64          `gorm:"not null" json:"byte_size"`
	CreatedAt   time.Time      `json:"created_at"`
}
