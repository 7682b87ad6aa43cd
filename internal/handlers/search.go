package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/es"
)

type SearchHandler struct {
	Indexer *es.Indexer
}

// SearchTransactions queries the settled-transaction archive.
func (h *SearchHandler) SearchTransactions(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))

	out, err := h.Indexer.Search(c.Request().Context(), query, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable, please retry")
	}
	return c.JSON(http.StatusOK, out)
}
