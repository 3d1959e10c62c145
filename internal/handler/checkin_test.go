package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/repository"
	"github.com/venuedesk/room-checkin/internal/service"
)

type handlerFixture struct {
	e           *echo.Echo
	attendees   *repository.AttendeeRepo
	rooms       *repository.RoomRepo
	assignments *repository.AssignmentRepo
	checkIns    *CheckInHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	attendees := repository.NewAttendeeRepo(db)
	rooms := repository.NewRoomRepo(db)
	assignments := repository.NewAssignmentRepo(db)
	checkIns := repository.NewCheckInRepo(db)
	occupancy := service.NewOccupancy(db, attendees, rooms, assignments, checkIns, nil)

	e := echo.New()
	e.Validator = NewValidator()
	return &handlerFixture{
		e:           e,
		attendees:   attendees,
		rooms:       rooms,
		assignments: assignments,
		checkIns:    NewCheckInHandler(occupancy),
	}
}

func (f *handlerFixture) postJSON(t *testing.T, h echo.HandlerFunc, body string, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCheckInHandlerStatusCodes(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	a := &model.Attendee{PublicID: "A-HTTP00001", FirstName: "Ada", LastName: "Lovelace"}
	if err := f.attendees.Create(ctx, a); err != nil {
		t.Fatalf("create attendee: %v", err)
	}
	assigned := &model.Room{Name: "Assigned"}
	if err := f.rooms.Create(ctx, assigned); err != nil {
		t.Fatalf("create room: %v", err)
	}
	forbidden := &model.Room{Name: "Forbidden"}
	if err := f.rooms.Create(ctx, forbidden); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := f.assignments.ReplaceForAttendee(ctx, a.ID, []string{assigned.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Not assigned to the room: 403.
	rec := f.postJSON(t, f.checkIns.Create,
		`{"attendee_id":"`+a.ID+`","room_id":"`+forbidden.ID+`"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	// Assigned: 201 with the new check-in row.
	rec = f.postJSON(t, f.checkIns.Create,
		`{"attendee_id":"`+a.ID+`","room_id":"`+assigned.ID+`"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created model.CheckIn
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AttendeeID != a.ID || created.RoomID != assigned.ID {
		t.Fatalf("unexpected check-in: %+v", created)
	}

	// Already present: 409.
	rec = f.postJSON(t, f.checkIns.Create,
		`{"attendee_id":"`+a.ID+`","room_id":"`+assigned.ID+`"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unknown attendee: 404.
	rec = f.postJSON(t, f.checkIns.Create,
		`{"attendee_id":"no-such-id","room_id":"`+assigned.ID+`"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	// Missing fields: 400 from validation.
	rec = f.postJSON(t, f.checkIns.Create, `{"attendee_id":"`+a.ID+`"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckInHandlerScanPath(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	a := &model.Attendee{PublicID: "A-SCAN00009", FirstName: "Grace", LastName: "Hopper"}
	if err := f.attendees.Create(ctx, a); err != nil {
		t.Fatalf("create attendee: %v", err)
	}
	room := &model.Room{Name: "Door"}
	if err := f.rooms.Create(ctx, room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := f.assignments.ReplaceForAttendee(ctx, a.ID, []string{room.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rec := f.postJSON(t, f.checkIns.Scan,
		`{"public_id":"A-SCAN00009"}`, map[string]string{"id": room.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unknown badge: 404.
	rec = f.postJSON(t, f.checkIns.Scan,
		`{"public_id":"A-NOBODY001"}`, map[string]string{"id": room.ID})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckInHandlerCheckOut(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	a := &model.Attendee{PublicID: "A-OUT000001", FirstName: "Joan", LastName: "Clarke"}
	if err := f.attendees.Create(ctx, a); err != nil {
		t.Fatalf("create attendee: %v", err)
	}
	room := &model.Room{Name: "Hall"}
	if err := f.rooms.Create(ctx, room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := f.assignments.ReplaceForAttendee(ctx, a.ID, []string{room.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	rec := f.postJSON(t, f.checkIns.Create,
		`{"attendee_id":"`+a.ID+`","room_id":"`+room.ID+`"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("check in: got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"attendee_id":"`+a.ID+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	out := httptest.NewRecorder()
	c := f.e.NewContext(req, out)
	if err := f.checkIns.CheckOut(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", out.Code, out.Body.String())
	}
	var body struct {
		CheckedOut int64 `json:"checked_out"`
	}
	if err := json.Unmarshal(out.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.CheckedOut != 1 {
		t.Fatalf("expected 1 checked out, got %d", body.CheckedOut)
	}
}
