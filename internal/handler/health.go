package handler // HTTP handlers for the public page, the admin page and probes

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is a liveness probe for load balancers and the seatwatch client.
// It always answers 200 "ok" and never touches the store.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
