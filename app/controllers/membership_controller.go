package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/catalog"
	"github.com/jmeindl/tiershop/internal/pkg/tier"
)

var catalogService *catalog.Service

// InitializeMembershipController wires the plan catalog service.
func InitializeMembershipController(svc *catalog.Service) {
	catalogService = svc
}

// HandleListPlans returns all active membership plans, cheapest first.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := catalogService.ListActive(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(plans)
}

// HandleGetPlan returns a single plan by id.
func HandleGetPlan(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}
	plan, err := catalogService.Get(c.Context(), id)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(plan)
}

// HandleGetMembership returns the authenticated user's current tier and the
// matching active plan, if any.
func HandleGetMembership(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return renderError(c, apperr.NotFoundf("user not found"))
		}
		return renderError(c, err)
	}

	resp := fiber.Map{
		"membership_type": user.MembershipType,
		"plan":            nil,
	}
	if t, parseErr := tier.Parse(user.MembershipType); parseErr == nil {
		if plan, planErr := catalogService.GetByTier(c.Context(), t); planErr == nil {
			resp["plan"] = plan
		}
	}
	return c.JSON(resp)
}
