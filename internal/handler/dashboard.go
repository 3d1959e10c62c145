package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/repository"
)

// DashboardHandler serves the operator overview: headline counts plus
// the most recent check-ins.
type DashboardHandler struct {
	AttendeeRepo *repository.AttendeeRepo
	RoomRepo     *repository.RoomRepo
	CheckInRepo  *repository.CheckInRepo
	Recent       int
}

func NewDashboardHandler(attendeeRepo *repository.AttendeeRepo, roomRepo *repository.RoomRepo, checkInRepo *repository.CheckInRepo, recent int) *DashboardHandler {
	if attendeeRepo == nil || roomRepo == nil || checkInRepo == nil {
		panic("nil dependency passed to NewDashboardHandler")
	}
	if recent <= 0 {
		recent = 5
	}
	return &DashboardHandler{
		AttendeeRepo: attendeeRepo,
		RoomRepo:     roomRepo,
		CheckInRepo:  checkInRepo,
		Recent:       recent,
	}
}

// Get handles GET /v1/dashboard. "Today" is the server's local
// calendar day.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	attendees, err := h.AttendeeRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	rooms, err := h.RoomRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := h.CheckInRepo.CountBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	recent, err := h.CheckInRepo.Recent(ctx, h.Recent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"attendees":       attendees,
		"rooms":           rooms,
		"checkins_today":  today,
		"recent_checkins": recent,
	})
}
