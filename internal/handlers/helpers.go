package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mediavault/backend/internal/gallery"
	"github.com/mediavault/backend/pkg/utils"
)

// respondError maps a gallery error kind onto the HTTP status and the
// standard error envelope. Anything unrecognized is a storage failure.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case gallery.IsValidation(err):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gallery.ErrInvalidCredentials):
		return utils.Error(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, gallery.ErrPermissionDenied):
		return utils.Error(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, gallery.ErrUserNotFound),
		errors.Is(err, gallery.ErrNotFound),
		errors.Is(err, gallery.ErrInvalidShare):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, gallery.ErrDuplicateUser):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, gallery.ErrUnsupportedType):
		return utils.Error(c, fiber.StatusUnsupportedMediaType, err.Error())
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "internal storage error")
	}
}
