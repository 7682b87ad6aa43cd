package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/identity"
	"github.com/Skotchmaster/pos_engine/internal/settlement"
)

type CheckoutHandler struct {
	Svc *settlement.Service
}

// Checkout runs the settlement saga. A 4xx here means the payment UI stays
// open for retry; once a transaction comes back the sale is recorded no
// matter what the cleanup steps did.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}

	var req struct {
		PaymentMethod  string     `json:"payment_method"`
		Tip            float64    `json:"tip"`
		Discount       float64    `json:"discount"`
		DiscountReason string     `json:"discount_reason"`
		OverridePIN    string     `json:"override_pin"`
		TabID          *uuid.UUID `json:"tab_id"`
		TableID        *uuid.UUID `json:"table_id"`
		TillID         string     `json:"till_id"`
		TillName       string     `json:"till_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method is required")
	}

	tx, err := h.Svc.Settle(c.Request().Context(), settlement.Request{
		Operator:       *op,
		PaymentMethod:  req.PaymentMethod,
		Tip:            req.Tip,
		Discount:       req.Discount,
		DiscountReason: req.DiscountReason,
		OverridePIN:    req.OverridePIN,
		TabID:          req.TabID,
		TableID:        req.TableID,
		TillID:         req.TillID,
		TillName:       req.TillName,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tx)
}
