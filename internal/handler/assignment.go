package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/repository"
)

// AssignmentHandler manages the attendee-to-room access lists.
type AssignmentHandler struct {
	AssignmentRepo *repository.AssignmentRepo
	AttendeeRepo   *repository.AttendeeRepo
	RoomRepo       *repository.RoomRepo
}

func NewAssignmentHandler(assignmentRepo *repository.AssignmentRepo, attendeeRepo *repository.AttendeeRepo, roomRepo *repository.RoomRepo) *AssignmentHandler {
	if assignmentRepo == nil || attendeeRepo == nil || roomRepo == nil {
		panic("nil dependency passed to NewAssignmentHandler")
	}
	return &AssignmentHandler{
		AssignmentRepo: assignmentRepo,
		AttendeeRepo:   attendeeRepo,
		RoomRepo:       roomRepo,
	}
}

// List handles GET /v1/assignments and returns every assignment with
// attendee and room names resolved.
func (h *AssignmentHandler) List(c echo.Context) error {
	assignments, err := h.AssignmentRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list assignments"})
	}
	return c.JSON(http.StatusOK, assignments)
}

// Replace handles POST /v1/assignments. The submitted room set becomes
// the attendee's entire access list: rooms not in the list are revoked
// and new ones granted, all in one transaction. An empty room_ids list
// clears the attendee's assignments.
func (h *AssignmentHandler) Replace(c echo.Context) error {
	var body struct {
		AttendeeID string   `json:"attendee_id" validate:"required"`
		RoomIDs    []string `json:"room_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.AttendeeRepo.GetByID(ctx, body.AttendeeID); err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch attendee"})
	}
	for _, roomID := range body.RoomIDs {
		if _, err := h.RoomRepo.GetByID(ctx, roomID); err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch room"})
		}
	}
	if err := h.AssignmentRepo.ReplaceForAttendee(ctx, body.AttendeeID, body.RoomIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update assignments"})
	}
	assignments, err := h.AssignmentRepo.ListForAttendee(ctx, body.AttendeeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch assignments"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"attendee_id": body.AttendeeID,
		"assignments": assignments,
	})
}

// Assign handles POST /v1/rooms/:id/assign. It grants access to the
// given attendees without touching their other assignments; pairs that
// already exist are silently skipped and the response reports how many
// rows were actually inserted.
func (h *AssignmentHandler) Assign(c echo.Context) error {
	var body struct {
		AttendeeIDs []string `json:"attendee_ids" validate:"required,min=1"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	roomID := c.Param("id")
	if _, err := h.RoomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch room"})
	}
	inserted, err := h.AssignmentRepo.AddForRoom(ctx, roomID, body.AttendeeIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign attendees"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":  roomID,
		"assigned": inserted,
	})
}
