package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/openday-seat-reservation/internal/logging"
    "github.com/iliyamo/openday-seat-reservation/internal/service"
    "github.com/iliyamo/openday-seat-reservation/internal/validation"
)

// writeError maps service outcomes onto status codes. Store errors are
// passed through with their message unchanged.
func writeError(c echo.Context, err error) error {
    var verr *validation.Error
    switch {
    case errors.As(err, &verr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
    case errors.Is(err, service.ErrSeatUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
    case errors.Is(err, service.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no reservation matches the given details"})
    case errors.Is(err, service.ErrSettingsNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "settings not configured"})
    }
    logging.Error().Err(err).Str("path", c.Path()).Msg("store error")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
