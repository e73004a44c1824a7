// Package seed creates demo data for development databases. It is never
// wired into the serving path.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"moim/internal/models"
)

var (
	nicknames = []string{
		"코딩하는라쿤", "새벽감자", "연남동개발자", "스터디장인", "판교출근러",
		"데이터호랑이", "기록하는사람", "주말러너", "느린완주자", "커피두잔",
	}

	studyGoals = []string{
		"알고리즘 문제풀이 스터디", "CS 전공지식 면접 대비", "Go 백엔드 스터디",
		"SQLD 자격증 준비", "토익 900 목표 스터디", "운영체제 완독 모임",
	}

	freeTitles = []string{
		"오늘 점심 뭐 드셨나요", "이직 고민 들어주실 분", "재택 근무 꿀팁 공유",
		"요즘 읽는 책 추천해요", "운동 루틴 공유합니다",
	}

	shareTitles = []string{
		"네트워크 정리 노트 공유", "면접 질문 모음 PDF", "스터디 발표 자료 올립니다",
		"공부 계획 템플릿 나눔", "작년 기출 정리본",
	}
)

// Factory builds and persists demo entities.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory returns a Factory bound to db.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (f *Factory) pick(list []string) string {
	return list[f.rng.Intn(len(list))]
}

// pastTime spreads created_at over the last maxDays days.
func (f *Factory) pastTime(maxDays int) time.Time {
	return time.Now().
		Add(-time.Duration(f.rng.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(f.rng.Intn(60)) * time.Minute)
}

// CreateUser persists a demo user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Nickname:        fmt.Sprintf("%s%d", f.pick(nicknames), gofakeit.Number(10, 99)),
		ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a demo post in the given category. Study posts get
// a recruitment window; roughly half are still open for applications.
func (f *Factory) CreatePost(user *models.User, category models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:   user.ID,
		Content:  gofakeit.Paragraph(2, 3, 8, "\n"),
		Category: category,
		Active:   true,
	}
	switch category {
	case models.CategoryStudy:
		post.Title = f.pick(studyGoals)
	case models.CategoryFree:
		post.Title = f.pick(freeTitles)
	default:
		post.Title = f.pick(shareTitles)
	}
	post.CreatedAt = f.pastTime(30)

	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}

	if category == models.CategoryStudy {
		start := post.CreatedAt
		end := start.AddDate(0, 0, 7+f.rng.Intn(21))
		if f.rng.Intn(2) == 0 {
			// Closed window for badge variety.
			end = start.AddDate(0, 0, 1)
		}
		rec := &models.StudyRecruitment{
			PostID:       post.ID,
			RecruitStart: start,
			RecruitEnd:   end,
			StudyStart:   end.AddDate(0, 0, 1),
			StudyEnd:     end.AddDate(0, 2, 0),
			MaxMember:    2 + f.rng.Intn(8),
		}
		if err := f.db.Create(rec).Error; err != nil {
			return nil, err
		}
		post.Recruitment = rec
	}
	return post, nil
}

// CreateComment persists a demo comment, optionally threaded under parent.
func (f *Factory) CreateComment(post *models.Post, user *models.User, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   gofakeit.Sentence(8 + f.rng.Intn(10)),
		CreatedAt: post.CreatedAt.Add(time.Duration(1+f.rng.Intn(72)) * time.Hour),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, f.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
}

// CreateLike persists a like row and bumps the counter.
func (f *Factory) CreateLike(post *models.Post, user *models.User) error {
	like := &models.Like{PostID: post.ID, UserID: user.ID}
	if err := f.db.Create(like).Error; err != nil {
		return err
	}
	return f.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// CreateApplication persists a study application in a random final state.
func (f *Factory) CreateApplication(post *models.Post, user *models.User) (*models.StudyApplication, error) {
	statuses := []models.ApplicationStatus{
		models.ApplicationPending,
		models.ApplicationApproved,
		models.ApplicationRejected,
	}
	app := &models.StudyApplication{
		PostID: post.ID,
		UserID: user.ID,
		Status: statuses[f.rng.Intn(len(statuses))],
	}
	return app, f.db.Create(app).Error
}

// CreateViews records n views on a day, maintaining both the lifetime
// counter and the daily row the ranking query reads.
func (f *Factory) CreateViews(post *models.Post, day time.Time, n int) error {
	if n <= 0 {
		return nil
	}
	if err := f.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error; err != nil {
		return err
	}
	daily := &models.PostViewDaily{
		PostID:   post.ID,
		ViewDate: models.ViewDate(day),
		Views:    n,
	}
	return f.db.Create(daily).Error
}
