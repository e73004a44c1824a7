package models

import "time"

// ViewDateLayout is the calendar-day format used for daily view rows.
const ViewDateLayout = "2006-01-02"

// PostViewDaily accumulates views for one post on one calendar day.
// Unique per (post, day); the trailing-7-day ranking sums these rows.
type PostViewDaily struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_view_post_day" json:"post_id"`
	ViewDate  string    `gorm:"size:10;not null;uniqueIndex:idx_view_post_day" json:"view_date"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewDate formats a time as the daily-row key in UTC.
func ViewDate(t time.Time) string {
	return t.UTC().Format(ViewDateLayout)
}

// WeeklyRank is one entry of the trailing-7-day ranking.
type WeeklyRank struct {
	PostID      uint     `json:"post_id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	WeeklyViews int      `json:"weekly_views"`
}
