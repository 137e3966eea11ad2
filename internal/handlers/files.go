package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mediavault/backend/internal/gallery"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/pkg/utils"
)

type FilesHandler struct {
	Gallery *gallery.Service
}

func NewFilesHandler(service *gallery.Service) *FilesHandler {
	return &FilesHandler{Gallery: service}
}

// Upload accepts one or more files from any multipart file field and adds
// them to the folder named by the folderId form value. The response lists
// every file with either its new id or its individual failure; a batch is
// only reported as failed outright when no file made it through.
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "multipart form is required")
	}

	folderID := strings.TrimSpace(c.FormValue("folderId"))

	var inputs []gallery.UploadInput
	for _, headers := range form.File {
		for _, fh := range headers {
			fh := fh
			inputs = append(inputs, gallery.UploadInput{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}

	results, err := h.Gallery.Upload(c.Context(), currentUser.ID, folderID, inputs)
	if err != nil {
		return respondError(c, err)
	}

	stored := 0
	for _, result := range results {
		if result.Error == "" {
			stored++
		}
	}

	status := fiber.StatusCreated
	if stored == 0 {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{
		"success": stored > 0,
		"message": fmt.Sprintf("%d of %d file(s) uploaded", stored, len(results)),
		"files":   results,
	})
}

func (h *FilesHandler) Search(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	query := gallery.SearchQuery{
		Text:      strings.TrimSpace(c.Query("q")),
		MediaType: strings.TrimSpace(c.Query("mediaType")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		SortBy:    c.Query("sort", gallery.SortByDate),
		Ascending: c.Query("order", "desc") == "asc",
	}

	records, err := h.Gallery.SearchFiles(currentUser.ID, query)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, records)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	rec, err := h.Gallery.GetFile(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rec)
}

func (h *FilesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req gallery.UpdateFileInput
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	rec, err := h.Gallery.UpdateFile(c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rec)
}

type deleteFileRequest struct {
	FolderID string `json:"folderId"`
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req deleteFileRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Gallery.DeleteFile(c.Context(), currentUser.ID, c.Params("id"), req.FolderID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "file deleted"})
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	rec, stream, err := h.Gallery.Download(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, rec.Type)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rec.Name))

	// Sizes beyond the platform int range stream chunked instead of
	// truncating the length.
	bodySize := -1
	if int64(int(rec.Size)) == rec.Size {
		bodySize = int(rec.Size)
	}
	return c.SendStream(stream, bodySize)
}
