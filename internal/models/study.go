package models

import "time"

// StudyRecruitment is the 1:1 extension row for study posts. The window
// ordering recruit_start <= recruit_end <= study_start <= study_end is
// enforced on create and on every patch.
type StudyRecruitment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;uniqueIndex" json:"post_id"`
	RecruitStart time.Time `gorm:"not null" json:"recruit_start"`
	RecruitEnd   time.Time `gorm:"not null" json:"recruit_end"`
	StudyStart   time.Time `gorm:"not null" json:"study_start"`
	StudyEnd     time.Time `gorm:"not null" json:"study_end"`
	MaxMember    int       `gorm:"not null;default:0" json:"max_member"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidateWindow checks the date ordering invariant.
func (r *StudyRecruitment) ValidateWindow() error {
	if r.RecruitStart.After(r.RecruitEnd) {
		return NewValidationError("recruit_start must not be after recruit_end")
	}
	if r.RecruitEnd.After(r.StudyStart) {
		return NewValidationError("recruit_end must not be after study_start")
	}
	if r.StudyStart.After(r.StudyEnd) {
		return NewValidationError("study_start must not be after study_end")
	}
	if r.MaxMember < 0 {
		return NewValidationError("max_member must not be negative")
	}
	return nil
}

// RecruitmentPatch enumerates updatable recruitment fields.
type RecruitmentPatch struct {
	RecruitStart *time.Time `json:"recruit_start,omitempty"`
	RecruitEnd   *time.Time `json:"recruit_end,omitempty"`
	StudyStart   *time.Time `json:"study_start,omitempty"`
	StudyEnd     *time.Time `json:"study_end,omitempty"`
	MaxMember    *int       `json:"max_member,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p RecruitmentPatch) Empty() bool {
	return p.RecruitStart == nil && p.RecruitEnd == nil && p.StudyStart == nil &&
		p.StudyEnd == nil && p.MaxMember == nil
}

// ApplicationStatus is the study-application state. pending is the only
// non-terminal state; approved and rejected are terminal.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// StudyApplication is one user's membership request for a study post.
// Unique per (post, user) for its lifetime.
type StudyApplication struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	PostID    uint              `gorm:"not null;uniqueIndex:idx_application_post_user" json:"post_id"`
	UserID    uint              `gorm:"not null;uniqueIndex:idx_application_post_user" json:"user_id"`
	User      User              `gorm:"foreignKey:UserID" json:"user"`
	Status    ApplicationStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
