package router // router defines how HTTP routes are registered for the API

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/openday-seat-reservation/internal/config"
	"github.com/iliyamo/openday-seat-reservation/internal/handler"
	"github.com/iliyamo/openday-seat-reservation/internal/middleware"
)

// RegisterRoutes registers the probe and scrape endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI mounts the Open Day API under /api. Reads go through the
// response cache; every write flushes it. Reserve and cancel endpoints
// are rate limited per client; cancel-verify also per submitted phone.
func RegisterAPI(e *echo.Echo, h *handler.ReservationHandler, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api",
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.InvalidateOnWrite(cacheCfg, rdb),
	)

	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.GET("/events", h.ListEvents)
	g.GET("/seats", h.ListSeats)
	g.GET("/seats/:eventId", h.ListSeatsByEvent)
	g.GET("/grid/:eventId", h.GetGrid)

	perClient := middleware.NewTokenBucket(rlCfg, rdb, middleware.PerClient)
	g.POST("/reserve", h.Reserve, perClient)
	g.POST("/reserve/:eventId", h.ReserveForEvent, perClient)
	g.DELETE("/cancel/:id", h.CancelByID, perClient)
	g.POST("/cancel-verify", h.CancelVerify, middleware.NewTokenBucket(rlCfg, rdb, middleware.PerClientAndPhone))
}

// RegisterStatic serves the visitor page at / and the admin page at
// /admin from dir. Files are sent as they are on disk.
func RegisterStatic(e *echo.Echo, dir string) {
	e.Static("/", dir)
	e.GET("/admin", func(c echo.Context) error {
		return c.File(filepath.Join(dir, "admin.html"))
	})
	e.GET("/admin/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/admin")
	})
}
