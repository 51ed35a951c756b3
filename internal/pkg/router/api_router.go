package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jmeindl/tiershop/app/controllers"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/cart"
	"github.com/jmeindl/tiershop/internal/pkg/catalog"
	"github.com/jmeindl/tiershop/internal/pkg/checkout"
	"github.com/jmeindl/tiershop/internal/pkg/middleware"
	"github.com/jmeindl/tiershop/internal/pkg/order"
	"github.com/jmeindl/tiershop/internal/pkg/payment"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	installServices()

	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware(), middleware.RequireAPIAuth)

	v1.Get("/plans", controllers.HandleListPlans)
	v1.Get("/plans/:id", controllers.HandleGetPlan)
	v1.Get("/membership", controllers.HandleGetMembership)

	v1.Get("/cart", controllers.HandleGetCart)
	v1.Post("/cart/add", controllers.HandleAddToCart)
	v1.Patch("/cart/items/:id", controllers.HandleUpdateCartItem)
	v1.Delete("/cart/items/:id", controllers.HandleRemoveCartItem)
	v1.Delete("/cart/clear", controllers.HandleClearCart)

	v1.Post("/checkout", controllers.HandleCheckout)

	v1.Post("/payment/intent", controllers.HandleCreatePaymentIntent)
	v1.Post("/payment/verify", controllers.HandleVerifyPayment)
	v1.Get("/payment/status/:intentId", controllers.HandleGetPaymentStatus)
	v1.Post("/payment/refund", controllers.HandleRefundPayment)

	v1.Get("/orders", controllers.HandleListOrders)
	v1.Get("/orders/:id", controllers.HandleGetOrder)
}

// installServices builds the service graph from the repository factory and
// hands it to the controllers.
func installServices() {
	factory := repository.GetGlobalFactory()
	tx := factory.GetTxManager()

	catalogService := catalog.NewService(factory.GetPlanRepository(), catalog.NewRedisCache())
	cartService := cart.NewService(tx, factory.GetCartRepository(), catalogService)
	orderBuilder := order.NewBuilder(tx, factory.GetUserRepository(), cartService)
	gateway := payment.NewStripeClientFromEnv()
	checkoutService := checkout.NewService(tx, cartService, orderBuilder, gateway)

	controllers.InitializeMembershipController(catalogService)
	controllers.InitializeCartController(cartService)
	controllers.InitializeOrderController(orderBuilder, checkoutService)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
