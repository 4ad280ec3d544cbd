package response

import (
	"errors"

	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Error renders err with the status of its kind. Messages of server errors
// are replaced by a generic one. Framework errors keep their own status.
func Error(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorBody{
			Kind:    kindForStatus(fiberErr.Code).String(),
			Message: fiberErr.Message,
		})
	}

	kind := autherror.KindOf(err)
	return c.Status(autherror.HTTPStatus(kind)).JSON(ErrorBody{
		Kind:    kind.String(),
		Message: autherror.MessageOf(err),
	})
}

func kindForStatus(status int) autherror.Kind {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return autherror.KindBadRequest
	case fiber.StatusUnauthorized:
		return autherror.KindUnauthorized
	case fiber.StatusForbidden:
		return autherror.KindForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return autherror.KindNotFound
	case fiber.StatusConflict:
		return autherror.KindConflict
	default:
		return autherror.KindServerError
	}
}
