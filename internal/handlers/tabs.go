package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/identity"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/tabs"
)

type TabHandler struct {
	Svc *tabs.Service
}

func (h *TabHandler) ListTabs(c echo.Context) error {
	out, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TabHandler) CreateTab(c echo.Context) error {
	var req struct {
		Name     string     `json:"name"`
		TillID   string     `json:"till_id"`
		TillName string     `json:"till_name"`
		TableID  *uuid.UUID `json:"table_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tab, err := h.Svc.Create(c.Request().Context(), req.Name, req.TillID, req.TillName, req.TableID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, tab)
}

// ParkCart merges the current cart into the tab and parks the session.
func (h *TabHandler) ParkCart(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tab id")
	}

	tab, err := h.Svc.AddCurrentOrder(c.Request().Context(), tabID, op.ID, op.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tab)
}

func (h *TabHandler) LoadTab(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tab id")
	}

	items, err := h.Svc.LoadIntoCart(c.Request().Context(), tabID, op.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *TabHandler) SaveTab(c echo.Context) error {
	op, ok := identity.FromEchoContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing operator")
	}
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tab id")
	}

	tab, err := h.Svc.SaveFromCart(c.Request().Context(), tabID, op.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tab)
}

func (h *TabHandler) CloseTab(c echo.Context) error {
	tabID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tab id")
	}
	if err := h.Svc.Close(c.Request().Context(), tabID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TabHandler) TransferItems(c echo.Context) error {
	var req struct {
		SourceTabID uuid.UUID          `json:"source_tab_id"`
		DestTabID   *uuid.UUID         `json:"dest_tab_id"`
		NewName     string             `json:"new_name"`
		Items       []models.OrderItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src, dst, err := h.Svc.Transfer(c.Request().Context(), tabs.TransferRequest{
		SourceTabID: req.SourceTabID,
		DestTabID:   req.DestTabID,
		NewName:     req.NewName,
		Items:       req.Items,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"source": src, "destination": dst})
}
