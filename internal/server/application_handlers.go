package server

import (
	"github.com/gofiber/fiber/v2"

	"moim/internal/middleware"
	"moim/internal/models"
)

// Apply handles POST /api/applications
func (s *Server) Apply(c *fiber.Ctx) error {
	var req struct {
		PostID uint `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	app, err := s.applicationSvc.Apply(c.Context(), req.PostID, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// ApproveApplication handles POST /api/applications/:id/approve
func (s *Server) ApproveApplication(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	app, err := s.applicationSvc.Approve(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(app)
}

// RejectApplication handles POST /api/applications/:id/reject
func (s *Server) RejectApplication(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	app, err := s.applicationSvc.Reject(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(app)
}

// ListApplicationsByPost handles GET /api/posts/:id/applications
func (s *Server) ListApplicationsByPost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	list, err := s.applicationSvc.ListByPost(c.Context(), postID, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(list), "items": list})
}

// ListMyApplications handles GET /api/applications/mine
func (s *Server) ListMyApplications(c *fiber.Ctx) error {
	list, err := s.applicationSvc.ListMine(c.Context(), middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(list), "items": list})
}
