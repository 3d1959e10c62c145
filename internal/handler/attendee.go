package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/repository"
	"github.com/venuedesk/room-checkin/internal/service"
	"github.com/venuedesk/room-checkin/internal/utils"
)

// AttendeeHandler groups the dependencies for attendee CRUD and bulk
// import. All routes assume JWT middleware has already run.
type AttendeeHandler struct {
	AttendeeRepo   *repository.AttendeeRepo
	AssignmentRepo *repository.AssignmentRepo
	Importer       *service.Importer
}

// NewAttendeeHandler constructs an AttendeeHandler with the provided
// dependencies. All must be non-nil.
func NewAttendeeHandler(attendeeRepo *repository.AttendeeRepo, assignmentRepo *repository.AssignmentRepo, importer *service.Importer) *AttendeeHandler {
	if attendeeRepo == nil || assignmentRepo == nil || importer == nil {
		panic("nil dependency passed to NewAttendeeHandler")
	}
	return &AttendeeHandler{
		AttendeeRepo:   attendeeRepo,
		AssignmentRepo: assignmentRepo,
		Importer:       importer,
	}
}

// List handles GET /v1/attendees and returns all attendees, newest
// first.
func (h *AttendeeHandler) List(c echo.Context) error {
	attendees, err := h.AttendeeRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list attendees"})
	}
	return c.JSON(http.StatusOK, attendees)
}

// Create handles POST /v1/attendees. The public ID may be supplied
// (pre-printed badges) or omitted, in which case one is generated.
// Returns 409 when the public ID is already taken.
func (h *AttendeeHandler) Create(c echo.Context) error {
	var body struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"omitempty,email"`
		Phone     string `json:"phone"`
		Category  string `json:"category"`
		PublicID  string `json:"public_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	publicID := strings.TrimSpace(body.PublicID)
	if publicID == "" {
		generated, err := utils.NewPublicID()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate public id"})
		}
		publicID = generated
	}
	attendee := &model.Attendee{
		PublicID:  publicID,
		FirstName: strings.TrimSpace(body.FirstName),
		LastName:  strings.TrimSpace(body.LastName),
		Email:     strings.TrimSpace(body.Email),
		Phone:     strings.TrimSpace(body.Phone),
		Category:  strings.TrimSpace(body.Category),
		Status:    model.AttendeeStatusActive,
	}
	if err := h.AttendeeRepo.Create(c.Request().Context(), attendee); err != nil {
		if errors.Is(err, repository.ErrDuplicatePublicID) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "public id already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create attendee"})
	}
	return c.JSON(http.StatusCreated, attendee)
}

// Get handles GET /v1/attendees/:id. The response includes the
// attendee's current room assignments.
func (h *AttendeeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	attendee, err := h.AttendeeRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch attendee"})
	}
	assignments, err := h.AssignmentRepo.ListForAttendee(ctx, attendee.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch assignments"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"attendee":    attendee,
		"assignments": assignments,
	})
}

// Update handles PUT /v1/attendees/:id. Names, contact details,
// category and status are editable; the public ID is not, since badges
// may already be printed with it.
func (h *AttendeeHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	attendee, err := h.AttendeeRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch attendee"})
	}
	var body struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"omitempty,email"`
		Phone     string `json:"phone"`
		Category  string `json:"category"`
		Status    string `json:"status" validate:"omitempty,oneof=active inactive"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	attendee.FirstName = strings.TrimSpace(body.FirstName)
	attendee.LastName = strings.TrimSpace(body.LastName)
	attendee.Email = strings.TrimSpace(body.Email)
	attendee.Phone = strings.TrimSpace(body.Phone)
	attendee.Category = strings.TrimSpace(body.Category)
	if body.Status != "" {
		attendee.Status = body.Status
	}
	if err := h.AttendeeRepo.Update(ctx, attendee); err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update attendee"})
	}
	return c.JSON(http.StatusOK, attendee)
}

// Delete handles DELETE /v1/attendees/:id. The attendee's assignments
// and check-in history are removed in the same transaction.
func (h *AttendeeHandler) Delete(c echo.Context) error {
	err := h.AttendeeRepo.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete attendee"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Import handles POST /v1/attendees/import. The request carries the
// already-tokenized spreadsheet: a header row, raw cell rows and a
// category label applied to records without their own. The response is
// the import report with counts and any per-batch errors; a partially
// successful import is still a 200 with its counts.
func (h *AttendeeHandler) Import(c echo.Context) error {
	var body struct {
		Category string     `json:"category" validate:"required"`
		Header   []string   `json:"header" validate:"required,min=1"`
		Rows     [][]string `json:"rows" validate:"required,min=1"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	report, err := h.Importer.Run(c.Request().Context(), body.Category, body.Header, body.Rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process import"})
	}
	if report.Total == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid attendees found in the file"})
	}
	return c.JSON(http.StatusOK, report)
}
