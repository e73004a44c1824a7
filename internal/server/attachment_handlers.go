package server

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"moim/internal/middleware"
	"moim/internal/models"
	"moim/internal/service"
)

// UploadAttachment handles POST /api/posts/:id/attachments (multipart)
func (s *Server) UploadAttachment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A multipart \"file\" field is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	attachment, err := s.attachmentSvc.Upload(c.Context(), service.UploadInput{
		PostID:      postID,
		UserID:      middleware.UserID(c),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attachment)
}

// ListAttachments handles GET /api/posts/:id/attachments
func (s *Server) ListAttachments(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	list, err := s.attachmentSvc.List(c.Context(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": len(list), "items": list})
}

// DeleteAttachment handles DELETE /api/posts/:id/attachments/:attachmentId
func (s *Server) DeleteAttachment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return nil
	}
	attachmentID, ok := paramID(c, "attachmentId")
	if !ok {
		return nil
	}

	if err := s.attachmentSvc.Delete(c.Context(), postID, middleware.UserID(c), attachmentID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Attachment deleted"})
}
