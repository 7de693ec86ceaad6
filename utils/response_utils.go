package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// FormatValidationErrors flattens validator/v10 errors into readable
// field-level messages.
func FormatValidationErrors(err error) []string {
	var messages []string
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			msg := fmt.Sprintf("Field '%s' failed on the '%s' rule", fieldErr.Field(), fieldErr.Tag())
			if fieldErr.Param() != "" {
				msg = fmt.Sprintf("%s (param: %s)", msg, fieldErr.Param())
			}
			messages = append(messages, msg)
		}
	} else if err != nil {
		messages = append(messages, err.Error())
	}
	return messages
}
