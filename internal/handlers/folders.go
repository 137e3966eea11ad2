package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mediavault/backend/internal/gallery"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/pkg/utils"
)

type FoldersHandler struct {
	Gallery *gallery.Service
}

func NewFoldersHandler(service *gallery.Service) *FoldersHandler {
	return &FoldersHandler{Gallery: service}
}

// Data returns the caller's full user document: folder tree, settings and
// profile, with the password hash stripped.
func (h *FoldersHandler) Data(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	doc, err := h.Gallery.GetUserDocument(currentUser.ID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (h *FoldersHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folderID, err := h.Gallery.CreateFolder(currentUser.ID, req.Name, req.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"folderId": folderID})
}

func (h *FoldersHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folder, files, err := h.Gallery.GetFolder(currentUser.ID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"folder": folder, "files": files})
}

type deleteFolderRequest struct {
	ParentID string `json:"parentId"`
}

func (h *FoldersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req deleteFolderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Gallery.DeleteFolder(c.Context(), currentUser.ID, c.Params("id"), req.ParentID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "folder deleted"})
}
