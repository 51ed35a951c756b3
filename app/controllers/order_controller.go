package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jmeindl/tiershop/internal/pkg/checkout"
	"github.com/jmeindl/tiershop/internal/pkg/order"
)

var (
	orderBuilder    *order.Builder
	checkoutService *checkout.Service
)

// InitializeOrderController wires the order builder and checkout coordinator.
func InitializeOrderController(builder *order.Builder, svc *checkout.Service) {
	orderBuilder = builder
	checkoutService = svc
}

// HandleCheckout completes the cart without an external payment. This is the
// trusted direct path; the payment-backed flow never reaches it.
func HandleCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	completed, err := checkoutService.CheckoutFromCart(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(completed)
}

// HandleListOrders returns the authenticated user's orders, newest first.
func HandleListOrders(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := orderBuilder.OrdersByUser(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrder returns one of the authenticated user's orders.
func HandleGetOrder(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	found, err := orderBuilder.OrderByID(c.Context(), userID, orderID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(found)
}
