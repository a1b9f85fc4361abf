// Package handler exposes the booking cart over HTTP.  Every handler
// answers JSON; failures carry an {"error": "..."} body.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
