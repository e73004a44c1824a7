package server

import (
	"github.com/gofiber/fiber/v2"

	"moim/internal/middleware"
	"moim/internal/models"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentSvc.CreateComment(c.Context(), postID, middleware.UserID(c), req.ParentID, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments handles GET /api/posts/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	oldestFirst := c.Query("order", "asc") != "desc"
	comments, err := s.commentSvc.ListComments(c.Context(), postID,
		c.QueryInt("limit", 50), c.QueryInt("offset", 0), oldestFirst)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(comments), "items": comments})
}

// UpdateComment handles PATCH /api/posts/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentSvc.UpdateComment(c.Context(), commentID, middleware.UserID(c), req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return nil
	}

	deleted, err := s.commentSvc.DeleteComment(c.Context(), commentID, middleware.UserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted", "deleted": deleted})
}
