// Package handler exposes the Open Day API. Handlers only bind and map
// errors; the reservation rules live in the service package.
package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/openday-seat-reservation/internal/grid"
    "github.com/iliyamo/openday-seat-reservation/internal/model"
    "github.com/iliyamo/openday-seat-reservation/internal/service"
)

// ReservationHandler serves settings, seats, events and the reserve and
// cancel endpoints.
type ReservationHandler struct {
    Svc *service.ReservationService
}

// NewReservationHandler panics if svc is nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc}
}

// settingsRequest is the PUT /api/settings body.
type settingsRequest struct {
    NumRows      int     `json:"num_rows"`
    NumCols      int     `json:"num_cols"`
    LogoURL      *string `json:"logo_url"`
    ColorPrimary *string `json:"color_primary"`
}

// GetSettings handles GET /api/settings.
func (h *ReservationHandler) GetSettings(c echo.Context) error {
    st, err := h.Svc.Settings(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// UpdateSettings handles PUT /api/settings. Values are stored as sent;
// only a body that does not decode is rejected.
func (h *ReservationHandler) UpdateSettings(c echo.Context) error {
    var req settingsRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    err := h.Svc.UpdateSettings(c.Request().Context(), model.Settings{
        NumRows:      req.NumRows,
        NumCols:      req.NumCols,
        LogoURL:      req.LogoURL,
        ColorPrimary: req.ColorPrimary,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListEvents handles GET /api/events.
func (h *ReservationHandler) ListEvents(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Svc.Events())
}

// ListSeats handles GET /api/seats.
func (h *ReservationHandler) ListSeats(c echo.Context) error {
    seats, err := h.Svc.ListSeats(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, nonNil(seats))
}

// ListSeatsByEvent handles GET /api/seats/:eventId.
func (h *ReservationHandler) ListSeatsByEvent(c echo.Context) error {
    eventID, ok := pathID(c, "eventId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    seats, err := h.Svc.ListSeatsByEvent(c.Request().Context(), eventID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, nonNil(seats))
}

// Reserve handles POST /api/reserve.
func (h *ReservationHandler) Reserve(c echo.Context) error {
    var in service.ReserveInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    in.EventID = nil
    return h.reserve(c, in)
}

// ReserveForEvent handles POST /api/reserve/:eventId. The write only
// succeeds when the seat belongs to that event.
func (h *ReservationHandler) ReserveForEvent(c echo.Context) error {
    eventID, ok := pathID(c, "eventId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var in service.ReserveInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    in.EventID = &eventID
    return h.reserve(c, in)
}

func (h *ReservationHandler) reserve(c echo.Context, in service.ReserveInput) error {
    if err := h.Svc.Reserve(c.Request().Context(), in); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CancelByID handles DELETE /api/cancel/:id. success reports whether a
// reservation was actually cleared.
func (h *ReservationHandler) CancelByID(c echo.Context) error {
    seatID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }
    changed, err := h.Svc.CancelByID(c.Request().Context(), seatID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": changed})
}

// CancelVerify handles POST /api/cancel-verify.
func (h *ReservationHandler) CancelVerify(c echo.Context) error {
    var in service.CancelInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if _, err := h.Svc.CancelByDetails(c.Request().Context(), in); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetGrid handles GET /api/grid/:eventId: the event's seats laid out
// on the configured rows and columns.
func (h *ReservationHandler) GetGrid(c echo.Context) error {
    eventID, ok := pathID(c, "eventId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    if _, found := model.FindEvent(eventID); !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    }
    ctx := c.Request().Context()
    st, err := h.Svc.Settings(ctx)
    if err != nil {
        return writeError(c, err)
    }
    seats, err := h.Svc.ListSeatsByEvent(ctx, eventID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, grid.Build(st.NumRows, st.NumCols, seats))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil(seats []model.Seat) []model.Seat {
    if seats == nil {
        return []model.Seat{}
    }
    return seats
}
