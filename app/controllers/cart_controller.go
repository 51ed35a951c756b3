package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/cart"
)

var cartService *cart.Service

var validate = validator.New()

// InitializeCartController wires the cart service.
func InitializeCartController(svc *cart.Service) {
	cartService = svc
}

type addToCartRequest struct {
	MembershipPlanID uint `json:"membership_plan_id" validate:"required"`
	Quantity         int  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// HandleGetCart returns the current cart view.
func HandleGetCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := cartService.Snapshot(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(view)
}

// HandleAddToCart puts a membership plan into the cart.
func HandleAddToCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Invalidf("invalid request body"))
	}
	if err := validate.Struct(req); err != nil {
		return renderError(c, apperr.Invalidf("membership_plan_id is required"))
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := cartService.Add(c.Context(), userID, req.MembershipPlanID, req.Quantity)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(view)
}

// HandleUpdateCartItem changes the quantity of a cart line item.
func HandleUpdateCartItem(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, apperr.Invalidf("invalid request body"))
	}
	if err := validate.Struct(req); err != nil {
		return renderError(c, apperr.Invalidf("quantity must be at least 1"))
	}

	view, err := cartService.UpdateQuantity(c.Context(), userID, itemID, req.Quantity)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(view)
}

// HandleRemoveCartItem deletes a cart line item.
func HandleRemoveCartItem(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	if err := cartService.Remove(c.Context(), userID, itemID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

// HandleClearCart removes every line item from the cart.
func HandleClearCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	if err := cartService.Clear(c.Context(), userID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
