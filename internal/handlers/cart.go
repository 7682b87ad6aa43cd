package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/identity"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/session"
)

type CartHandler struct {
	Sessions *session.Store
}

func (h *CartHandler) GetCart(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	return c.JSON(http.StatusOK, h.Sessions.Items(op.ID))
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}

	var req struct {
		VariantID        string  `json:"variant_id"`
		ProductID        string  `json:"product_id"`
		Name             string  `json:"name"`
		Price            float64 `json:"price"`
		Quantity         int     `json:"quantity"`
		EffectiveTaxRate float64 `json:"effective_tax_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.VariantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "variant_id is required")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	items := h.Sessions.AddItem(op.ID, models.OrderItem{
		VariantID:        req.VariantID,
		ProductID:        req.ProductID,
		Name:             req.Name,
		Price:            req.Price,
		Quantity:         req.Quantity,
		EffectiveTaxRate: req.EffectiveTaxRate,
	})
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}

	variantID := c.Param("variantId")
	if variantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid variant id")
	}
	return c.JSON(http.StatusOK, h.Sessions.DecrementItem(op.ID, variantID))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	h.Sessions.Clear(op.ID)
	return c.JSON(http.StatusOK, []models.OrderItem{})
}

// LoadSession restores the operator's cart on login. Never fails: a broken
// session degrades to an empty cart.
func (h *CartHandler) LoadSession(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	return c.JSON(http.StatusOK, h.Sessions.Load(c.Request().Context(), op.ID))
}

func (h *CartHandler) Logout(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	h.Sessions.Logout(c.Request().Context(), op.ID)
	return c.NoContent(http.StatusNoContent)
}
