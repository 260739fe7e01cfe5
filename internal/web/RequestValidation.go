// This file contains the actual validator implementation for incoming http requests.
//
// You can implement custom validators for each field in this file and reference them in the request structs.

package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

var validate *validator.Validate

// Initialize the custom validator
func init() {
	validate = validator.New()
	validate.RegisterValidation("strongPassword", validateStrongPassword)
}

// ValidateRequest validates a request using a Fiber context and a request struct.
// Path parameters are parsed for every method, the body only for methods that carry one.
func ValidateRequest(c *fiber.Ctx, req interface{}) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodDelete:
		if err := c.QueryParser(req); err != nil {
			return err
		}
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if err := c.BodyParser(req); err != nil {
			return err
		}
	default:
		// Unsupported HTTP method
	}

	if err := c.ParamsParser(req); err != nil {
		return err
	}

	return validate.Struct(req)
}

// validateStrongPassword applies the account password policy to a string field.
func validateStrongPassword(fl validator.FieldLevel) bool {
	return user.ValidatePassword(fl.Field().String()) == nil
}
