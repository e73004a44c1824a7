package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"moim/internal/middleware"
	"moim/internal/models"
	"moim/internal/service"
)

// ListFeed handles GET /api/posts/list
func (s *Server) ListFeed(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if to != nil {
		// Make "to" inclusive of the named day.
		t := to.AddDate(0, 0, 1)
		to = &t
	}

	page, err := s.feedSvc.ListFeed(c.Context(), service.ListFeedInput{
		Category:      c.Query("category"),
		Query:         c.Query("q"),
		Scope:         c.Query("scope"),
		Cursor:        uint(c.QueryInt("cursor", 0)),
		Limit:         c.QueryInt("limit", 20),
		AuthorID:      uint(c.QueryInt("author_id", 0)),
		From:          from,
		To:            to,
		Badge:         c.Query("badge"),
		CurrentUserID: middleware.UserID(c),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		Title       string          `json:"title"`
		Content     string          `json:"content"`
		Category    models.Category `json:"category"`
		Recruitment *struct {
			RecruitStart time.Time `json:"recruit_start"`
			RecruitEnd   time.Time `json:"recruit_end"`
			StudyStart   time.Time `json:"study_start"`
			StudyEnd     time.Time `json:"study_end"`
			MaxMember    int       `json:"max_member"`
		} `json:"recruitment,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	}
	if req.Recruitment != nil {
		in.Recruitment = &models.StudyRecruitment{
			RecruitStart: req.Recruitment.RecruitStart,
			RecruitEnd:   req.Recruitment.RecruitEnd,
			StudyStart:   req.Recruitment.StudyStart,
			StudyEnd:     req.Recruitment.StudyEnd,
			MaxMember:    req.Recruitment.MaxMember,
		}
	}

	post, err := s.postSvc.CreatePost(c.Context(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postSvc.GetPost(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		models.PostPatch
		Recruitment *models.RecruitmentPatch `json:"recruitment,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postSvc.UpdatePost(c.Context(), id, middleware.UserID(c), req.PostPatch, req.Recruitment)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	if err := s.postSvc.DeletePost(c.Context(), id, middleware.UserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	result, err := s.postSvc.ToggleLike(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// RecordView handles POST /api/posts/:id/views
func (s *Server) RecordView(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	if err := s.viewSvc.RecordView(c.Context(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "View recorded"})
}

// WeeklyRanking handles GET /api/rankings/weekly?category=...
func (s *Server) WeeklyRanking(c *fiber.Ctx) error {
	ranks, err := s.viewSvc.WeeklyRanking(c.Context(), c.Query("category"), c.QueryInt("limit", 10))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"items": ranks})
}
