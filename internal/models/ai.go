package models

import "time"

// AIDraftKind tags what the generative call produced.
type AIDraftKind string

const (
	DraftStudyPlan AIDraftKind = "study_plan"
	DraftSummary   AIDraftKind = "summary"
)

// AIDraft persists one prompt/response pair. Fallback marks responses
// produced by the local template generator after the model call failed
// or returned unparsable output.
type AIDraft struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	Kind      AIDraftKind `gorm:"size:32;not null" json:"kind"`
	Prompt    string      `gorm:"type:text;not null" json:"prompt"`
	Response  string      `gorm:"type:text;not null" json:"response"`
	Fallback  bool        `gorm:"not null;default:false" json:"fallback"`
	CreatedAt time.Time   `json:"created_at"`
}
