package presenters

import (
	"Durian-Scanner/domain"

	"github.com/gofiber/fiber/v2"
)

type (
	ErrorBody struct {
		Success bool             `json:"success"`
		Error   string           `json:"error"`
		Kind    domain.ErrorKind `json:"kind,omitempty"`
		Message string           `json:"message,omitempty"`
	}
)

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := ErrorBody{
		Success: false,
		Message: message,
	}
	if err != nil {
		body.Error = err.Error()
		body.Kind = domain.KindOf(err)
	}
	return c.Status(status).JSON(body)
}

// Failure renders err with the status matching its kind. The fallback
// message is used when err carries none of its own.
func Failure(c *fiber.Ctx, err error, fallback string) error {
	message := domain.MessageOf(err)
	if message == "" {
		message = fallback
	}
	return ErrorResponse(c, domain.StatusOf(domain.KindOf(err)), message, err)
}

func JSON(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(data)
}
