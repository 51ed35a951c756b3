package controllers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
)

func TestParamUint(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := paramUint(c, "id")
		if err != nil {
			return renderError(c, err)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/items/42", wantStatus: fiber.StatusOK},
		{path: "/items/0", wantStatus: fiber.StatusBadRequest},
		{path: "/items/abc", wantStatus: fiber.StatusBadRequest},
		{path: "/items/-1", wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, "path %s", tt.path)
	}
}

func TestRenderErrorStatusMapping(t *testing.T) {
	var current error
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return renderError(c, current)
	})

	tests := []struct {
		err        error
		wantStatus int
		wantError  string
	}{
		{err: apperr.NotFoundf("membership plan not found"), wantStatus: fiber.StatusNotFound, wantError: "not_found"},
		{err: apperr.Invalidf("cart is empty"), wantStatus: fiber.StatusBadRequest, wantError: "invalid"},
		{err: apperr.Forbiddenf("payment does not belong to this user"), wantStatus: fiber.StatusForbidden, wantError: "forbidden"},
		{err: apperr.Conflictf("concurrent checkout detected"), wantStatus: fiber.StatusConflict, wantError: "conflict"},
		{err: apperr.Paymentf("payment not successful"), wantStatus: fiber.StatusPaymentRequired, wantError: "payment_error"},
		{err: errors.New("driver: bad connection"), wantStatus: fiber.StatusInternalServerError, wantError: "internal_error"},
	}

	for _, tt := range tests {
		current = tt.err
		resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode)

		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, tt.wantError, body.Error)
		require.NoError(t, resp.Body.Close())
	}
}

func TestRenderErrorHidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return renderError(c, errors.New("dsn user:pass@tcp(db:3306)/prod"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
}
