package seed

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"moim/internal/models"
)

// Options controls how much demo data Run creates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DefaultOptions is a board that looks lived-in without taking long to seed.
var DefaultOptions = Options{
	NumUsers: 15,
	NumPosts: 60,
}

// Run populates the database with demo users, posts across all three
// boards, threaded comments, likes, study applications and view history.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = DefaultOptions.NumUsers
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = DefaultOptions.NumPosts
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	categories := []models.Category{
		models.CategoryStudy, models.CategoryFree, models.CategoryShare,
	}
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author, categories[i%len(categories)])
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}

	for _, post := range posts {
		if err := decorate(f, post, users); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d users and %d posts", len(users), len(posts))
	return nil
}

// decorate attaches comments, likes, applications and views to one post.
func decorate(f *Factory, post *models.Post, users []*models.User) error {
	for i := 0; i < f.rng.Intn(4); i++ {
		commenter := users[f.rng.Intn(len(users))]
		root, err := f.CreateComment(post, commenter, nil)
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		if f.rng.Intn(2) == 0 {
			replier := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(post, replier, root); err != nil {
				return fmt.Errorf("create reply: %w", err)
			}
		}
	}

	// Distinct likers; the (post, user) pair is unique.
	for i, n := 0, f.rng.Intn(5); i < n && i < len(users); i++ {
		if users[i].ID == post.UserID {
			continue
		}
		if err := f.CreateLike(post, users[i]); err != nil {
			return fmt.Errorf("create like: %w", err)
		}
	}

	if post.Category == models.CategoryStudy {
		for i, n := 0, 1+f.rng.Intn(3); i < n && i < len(users); i++ {
			if users[i].ID == post.UserID {
				continue
			}
			if _, err := f.CreateApplication(post, users[i]); err != nil {
				return fmt.Errorf("create application: %w", err)
			}
		}
	}

	for back := 0; back < 10; back++ {
		day := time.Now().AddDate(0, 0, -back)
		if err := f.CreateViews(post, day, f.rng.Intn(30)); err != nil {
			return fmt.Errorf("create views: %w", err)
		}
	}
	return nil
}

func clean(db *gorm.DB) error {
	tables := []any{
		&models.PostViewDaily{},
		&models.Notification{},
		&models.StudyApplication{},
		&models.Attachment{},
		&models.Like{},
		&models.Comment{},
		&models.StudyRecruitment{},
		&models.AIDraft{},
		&models.Post{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
