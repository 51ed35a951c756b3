package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
)

type verifyPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

// HandleCreatePaymentIntent authorizes a charge for the live cart total and
// returns the provider client secret for the client-side confirmation step.
func HandleCreatePaymentIntent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := checkoutService.CreatePaymentIntent(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(resp)
}

// HandleVerifyPayment confirms a payment with the provider and commits the
// order, the membership promotion and the cart clearing in one unit.
func HandleVerifyPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Invalidf("invalid request body"))
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		return renderError(c, apperr.Invalidf("payment_intent_id is required"))
	}

	completed, err := checkoutService.VerifyAndComplete(c.Context(), req.PaymentIntentID, userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(completed)
}

// HandleGetPaymentStatus reports the provider-side status of an intent.
func HandleGetPaymentStatus(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	intentID := strings.TrimSpace(c.Params("intentId"))
	if intentID == "" {
		return renderError(c, apperr.Invalidf("payment intent id is required"))
	}

	status, err := checkoutService.PaymentStatus(c.Context(), intentID, userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(status)
}

// HandleRefundPayment refunds the charge behind an intent.
func HandleRefundPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Invalidf("invalid request body"))
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		return renderError(c, apperr.Invalidf("payment_intent_id is required"))
	}

	refund, err := checkoutService.Refund(c.Context(), req.PaymentIntentID, userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(refund)
}
