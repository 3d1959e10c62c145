// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venuedesk/room-checkin/internal/handler"
	"github.com/venuedesk/room-checkin/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// the liveness probe and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the login endpoint. There is no register or
// refresh flow: the service runs with a single operator credential
// configured through the environment.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/auth/login", a.Login)
}

// API bundles the handlers mounted on the protected /v1 group together
// with the optional Redis-backed middleware. Either middleware may be
// nil when Redis is not configured; the routes then run without rate
// limiting or response caching.
type API struct {
	Attendees *handler.AttendeeHandler
	Rooms     *handler.RoomHandler
	Assign    *handler.AssignmentHandler
	CheckIns  *handler.CheckInHandler
	Dashboard *handler.DashboardHandler
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterAPI mounts the protected endpoints under /v1. Every route in
// the group requires a valid access token. The two check-in POSTs get
// the rate limiter since they face shared scanner devices; the
// dashboard and list endpoints get the response cache since they are
// polled by overview screens.
func RegisterAPI(e *echo.Echo, api API, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	cached := func(h echo.HandlerFunc) echo.HandlerFunc {
		if api.Cache == nil {
			return h
		}
		return api.Cache(h)
	}
	limited := func(h echo.HandlerFunc) echo.HandlerFunc {
		if api.RateLimit == nil {
			return h
		}
		return api.RateLimit(h)
	}

	// ---- Attendees ----
	g.GET("/attendees", cached(api.Attendees.List))
	g.POST("/attendees", api.Attendees.Create)
	g.POST("/attendees/import", api.Attendees.Import)
	g.GET("/attendees/:id", api.Attendees.Get)
	g.PUT("/attendees/:id", api.Attendees.Update)
	g.DELETE("/attendees/:id", api.Attendees.Delete)

	// ---- Rooms ----
	g.GET("/rooms", cached(api.Rooms.List))
	g.POST("/rooms", api.Rooms.Create)
	g.GET("/rooms/:id", api.Rooms.Get)
	g.DELETE("/rooms/:id", api.Rooms.Delete)
	g.POST("/rooms/:id/assign", api.Assign.Assign)
	g.POST("/rooms/:id/checkin", limited(api.CheckIns.Scan))

	// ---- Assignments ----
	g.GET("/assignments", api.Assign.List)
	g.POST("/assignments", api.Assign.Replace)

	// ---- Check-ins ----
	g.POST("/checkins", limited(api.CheckIns.Create))
	g.PUT("/checkins", api.CheckIns.CheckOut)

	// ---- Dashboard ----
	g.GET("/dashboard", cached(api.Dashboard.Get))
}
