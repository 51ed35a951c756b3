package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/usercontext"
)

// currentUserID resolves the authenticated user for the request. The auth
// middleware is the only source of identity; client-supplied ids are never
// trusted.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.UserID == 0 {
		return 0, false
	}
	return userCtx.UserID, true
}

// renderError maps a service error to a structured JSON response.
func renderError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := fiber.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = fiber.StatusNotFound
	case apperr.KindInvalid:
		status = fiber.StatusBadRequest
	case apperr.KindForbidden:
		status = fiber.StatusForbidden
	case apperr.KindConflict:
		status = fiber.StatusConflict
	case apperr.KindPayment:
		status = fiber.StatusPaymentRequired
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		return c.Status(status).JSON(fiber.Map{
			"error":   kind.String(),
			"message": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   kind.String(),
		"message": err.Error(),
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "login required",
	})
}

// paramUint parses a numeric route parameter.
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalidf("invalid %s", name)
	}
	return uint(id), nil
}
