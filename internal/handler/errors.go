package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/model"
)

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrBackendUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// message hides backend detail behind the sentinel text.
func message(err error) string {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		return model.ErrInvalidCredentials.Error()
	case errors.Is(err, model.ErrBackendUnavailable):
		return model.ErrBackendUnavailable.Error()
	case errors.Is(err, model.ErrNotFound):
		return model.ErrNotFound.Error()
	case errors.Is(err, model.ErrUsernameTaken):
		return model.ErrUsernameTaken.Error()
	case errors.Is(err, model.ErrUnauthenticated):
		return model.ErrUnauthenticated.Error()
	case errors.Is(err, model.ErrForbidden):
		return model.ErrForbidden.Error()
	default:
		return "Internal server error"
	}
}

func fail(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": message(err)}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	return c.Status(statusFor(err)).JSON(body)
}

// written responds with data and, when only the image upload failed, a
// warning next to it.
func written(c *fiber.Ctx, status int, msg string, data any, err error) error {
	if err != nil && !errors.Is(err, model.ErrImageUploadFailed) {
		return fail(c, err)
	}
	body := fiber.Map{"message": msg, "data": data}
	if err != nil {
		body["warning"] = model.ErrImageUploadFailed.Error()
	}
	return c.Status(status).JSON(body)
}

func confirmed(c *fiber.Ctx) bool {
	return c.QueryBool("confirm")
}
