package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/tables"
)

type TableHandler struct {
	Svc *tables.Coordinator
}

func (h *TableHandler) ListTables(c echo.Context) error {
	out, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TableHandler) AssignTable(c echo.Context) error {
	tableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid table id")
	}

	var req struct {
		ActiveTabID *uuid.UUID `json:"active_tab_id"`
		TillID      string     `json:"till_id"`
		TillName    string     `json:"till_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tab, err := h.Svc.Assign(c.Request().Context(), tableID, req.ActiveTabID, req.TillID, req.TillName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tab)
}

// SyncTable retargets a tab's table link without assignment validation.
func (h *TableHandler) SyncTable(c echo.Context) error {
	var req struct {
		TabID   uuid.UUID  `json:"tab_id"`
		TableID *uuid.UUID `json:"table_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.SyncWithActiveTab(c.Request().Context(), req.TabID, req.TableID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TableHandler) ReleaseTable(c echo.Context) error {
	tableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid table id")
	}
	h.Svc.Release(c.Request().Context(), tableID)
	return c.NoContent(http.StatusNoContent)
}
