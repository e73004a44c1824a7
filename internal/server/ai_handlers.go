package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"moim/internal/middleware"
	"moim/internal/models"
)

// GenerateStudyPlan handles POST /api/ai/study-plans
func (s *Server) GenerateStudyPlan(c *fiber.Ctx) error {
	var req struct {
		Goal  string `json:"goal"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(req.Start))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid start date, expected YYYY-MM-DD"))
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(req.End))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid end date, expected YYYY-MM-DD"))
	}

	plan, appErr := s.aiSvc.GenerateStudyPlan(c.Context(), middleware.UserID(c), req.Goal, start, end)
	if appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// Summarize handles POST /api/ai/summaries
func (s *Server) Summarize(c *fiber.Ctx) error {
	var req struct {
		Text  string `json:"text"`
		Style string `json:"style"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	summary, err := s.aiSvc.Summarize(c.Context(), middleware.UserID(c), req.Text, req.Style)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(summary)
}

// ListDrafts handles GET /api/ai/drafts
func (s *Server) ListDrafts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	drafts, err := s.aiSvc.ListDrafts(c.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(drafts), "items": drafts})
}

// GetDraft handles GET /api/ai/drafts/:id
func (s *Server) GetDraft(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	draft, err := s.aiSvc.GetDraft(c.Context(), middleware.UserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(draft)
}

// DeleteDraft handles DELETE /api/ai/drafts/:id
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	if err := s.aiSvc.DeleteDraft(c.Context(), middleware.UserID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "draft deleted"})
}
