package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mediavault/backend/internal/gallery"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/pkg/utils"
)

type SharesHandler struct {
	Gallery *gallery.Service
}

func NewSharesHandler(service *gallery.Service) *SharesHandler {
	return &SharesHandler{Gallery: service}
}

type createShareRequest struct {
	FolderID          string `json:"folderId"`
	ProtectedDownload bool   `json:"protectedDownload"`
}

func (h *SharesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createShareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	share, err := h.Gallery.CreateShare(currentUser.ID, req.FolderID, req.ProtectedDownload)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, share)
}

func (h *SharesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	shares, err := h.Gallery.ListShares(currentUser.ID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, shares)
}

func (h *SharesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Gallery.DeleteShare(c.Params("id"), currentUser.ID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "share deleted"})
}

// Resolve is the public share endpoint behind every share link; it needs
// no session, only the share id and the capability token.
func (h *SharesHandler) Resolve(c *fiber.Ctx) error {
	view, err := h.Gallery.ResolveShare(c.Params("id"), c.Query("token"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}
