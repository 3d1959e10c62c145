package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/repository"
)

// RoomHandler serves room CRUD and the per-room detail view used by the
// door screens.
type RoomHandler struct {
	RoomRepo       *repository.RoomRepo
	AssignmentRepo *repository.AssignmentRepo
	CheckInRepo    *repository.CheckInRepo
}

func NewRoomHandler(roomRepo *repository.RoomRepo, assignmentRepo *repository.AssignmentRepo, checkInRepo *repository.CheckInRepo) *RoomHandler {
	if roomRepo == nil || assignmentRepo == nil || checkInRepo == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{
		RoomRepo:       roomRepo,
		AssignmentRepo: assignmentRepo,
		CheckInRepo:    checkInRepo,
	}
}

// List handles GET /v1/rooms. Each room carries its current open
// check-in count so the overview page can show live occupancy.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.RoomRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list rooms"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body struct {
		Name     string `json:"name" validate:"required"`
		Capacity *int   `json:"capacity" validate:"omitempty,min=1"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	room := &model.Room{
		Name:     strings.TrimSpace(body.Name),
		Capacity: body.Capacity,
	}
	if err := h.RoomRepo.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Get handles GET /v1/rooms/:id. The detail view joins three pieces:
// the room itself, everyone assigned to it, and who is present right
// now.
func (h *RoomHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	room, err := h.RoomRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch room"})
	}
	assigned, err := h.AssignmentRepo.ListForRoom(ctx, room.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch assigned attendees"})
	}
	present, err := h.CheckInRepo.OpenByRoom(ctx, room.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch open check-ins"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":     room,
		"assigned": assigned,
		"present":  present,
	})
}

// Delete handles DELETE /v1/rooms/:id. Assignments and check-in rows
// referencing the room go with it in one transaction.
func (h *RoomHandler) Delete(c echo.Context) error {
	err := h.RoomRepo.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
	}
	return c.NoContent(http.StatusNoContent)
}
