package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/repository"
	"github.com/venuedesk/room-checkin/internal/service"
)

// CheckInHandler exposes the occupancy state machine over HTTP: the
// desk path (attendee ID) and the scan path (badge public ID), plus
// check-out.
type CheckInHandler struct {
	Occupancy *service.Occupancy
}

func NewCheckInHandler(occupancy *service.Occupancy) *CheckInHandler {
	if occupancy == nil {
		panic("nil dependency passed to NewCheckInHandler")
	}
	return &CheckInHandler{Occupancy: occupancy}
}

// Create handles POST /v1/checkins, the staff desk path. Status codes
// mirror the transition outcomes: 403 when the attendee is not
// assigned to the room, 409 when they already have an open check-in
// anywhere.
func (h *CheckInHandler) Create(c echo.Context) error {
	var body struct {
		AttendeeID string `json:"attendee_id" validate:"required"`
		RoomID     string `json:"room_id" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	ci, err := h.Occupancy.CheckIn(c.Request().Context(), body.AttendeeID, body.RoomID)
	if err != nil {
		return checkInError(c, err)
	}
	return c.JSON(http.StatusCreated, ci)
}

// Scan handles POST /v1/rooms/:id/checkin, the door scanner path. The
// body carries the public ID read off the badge QR code.
func (h *CheckInHandler) Scan(c echo.Context) error {
	var body struct {
		PublicID string `json:"public_id" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	ci, err := h.Occupancy.CheckInByPublicID(c.Request().Context(), body.PublicID, c.Param("id"))
	if err != nil {
		return checkInError(c, err)
	}
	return c.JSON(http.StatusCreated, ci)
}

// CheckOut handles PUT /v1/checkins. room_id is optional: when set, an
// open check-in in a different room is left alone. The response reports
// how many rows were closed; zero is fine, check-out is idempotent.
func (h *CheckInHandler) CheckOut(c echo.Context) error {
	var body struct {
		AttendeeID string `json:"attendee_id" validate:"required"`
		RoomID     string `json:"room_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	n, err := h.Occupancy.CheckOut(c.Request().Context(), body.AttendeeID, body.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check out"})
	}
	return c.JSON(http.StatusOK, echo.Map{"checked_out": n})
}

// checkInError maps the engine's sentinel errors onto HTTP statuses
// shared by both check-in paths.
func checkInError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrAttendeeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrNotAssigned):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "attendee is not assigned to this room"})
	case errors.Is(err, repository.ErrAlreadyCheckedIn):
		return c.JSON(http.StatusConflict, echo.Map{"error": "attendee already has an open check-in"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check in"})
	}
}
