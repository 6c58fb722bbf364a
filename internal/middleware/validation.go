package middleware

import (
	"edugenie/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidatedIDKey is the fiber.Ctx locals key holding a validated :id parameter.
const ValidatedIDKey = "validated_id"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam rejects requests whose :id path parameter is not a ULID.
func (vm *ValidationMiddleware) ValidateIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errors := vm.validator.ValidateID("id", id); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedIDKey, id)
		return c.Next()
	}
}
