package handler

import (
	"net/http"

	"partsgate/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports gateway liveness for the UI surface's startup probe.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"status": "ok",
	}, "")
}
