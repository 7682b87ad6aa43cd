package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/catalog"
	"github.com/Skotchmaster/pos_engine/internal/repo"
	"github.com/Skotchmaster/pos_engine/internal/stock"
)

type CatalogHandler struct {
	Catalog catalog.Provider
	Stock   *repo.StockRepo
}

// Makable reports which variants the current stock levels can fulfill.
func (h *CatalogHandler) Makable(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.Catalog.Snapshot(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "catalog unavailable, please retry")
	}
	levels, err := h.Stock.Levels(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "stock unavailable, please retry")
	}

	return c.JSON(http.StatusOK, stock.ComputeMakable(snap.ConsumptionIndex(), levels, nil))
}
