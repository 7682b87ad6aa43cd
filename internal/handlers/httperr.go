package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pos_engine/internal/apperr"
)

// httpError maps engine errors to HTTP. Business-rule rejections keep their
// specific message; everything unexpected gets a generic retry-safe one.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrAuthorization):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrTransient):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporary error, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
