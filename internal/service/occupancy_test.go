package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/repository"
)

type testStore struct {
	db          *database.DB
	attendees   *repository.AttendeeRepo
	rooms       *repository.RoomRepo
	assignments *repository.AssignmentRepo
	checkIns    *repository.CheckInRepo
	occupancy   *Occupancy
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := &testStore{
		db:          db,
		attendees:   repository.NewAttendeeRepo(db),
		rooms:       repository.NewRoomRepo(db),
		assignments: repository.NewAssignmentRepo(db),
		checkIns:    repository.NewCheckInRepo(db),
	}
	s.occupancy = NewOccupancy(db, s.attendees, s.rooms, s.assignments, s.checkIns, nil)
	return s
}

func (s *testStore) addAttendee(t *testing.T, publicID, first, last string) *model.Attendee {
	t.Helper()
	a := &model.Attendee{PublicID: publicID, FirstName: first, LastName: last}
	if err := s.attendees.Create(context.Background(), a); err != nil {
		t.Fatalf("create attendee: %v", err)
	}
	return a
}

func (s *testStore) addRoom(t *testing.T, name string) *model.Room {
	t.Helper()
	room := &model.Room{Name: name}
	if err := s.rooms.Create(context.Background(), room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func (s *testStore) assign(t *testing.T, attendeeID string, roomIDs ...string) {
	t.Helper()
	if err := s.assignments.ReplaceForAttendee(context.Background(), attendeeID, roomIDs); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func TestOccupancyCheckInLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.addAttendee(t, "A-LIFE00001", "Ida", "Rhodes")
	room := s.addRoom(t, "Auditorium")
	other := s.addRoom(t, "Foyer")
	s.assign(t, a.ID, room.ID, other.ID)

	ci, err := s.occupancy.CheckIn(ctx, a.ID, room.ID)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if ci.ID == "" || ci.RoomID != room.ID || ci.CheckedOutAt != nil {
		t.Fatalf("unexpected check-in: %+v", ci)
	}

	// Present anywhere means no second check-in, same room or not.
	if _, err := s.occupancy.CheckIn(ctx, a.ID, room.ID); !errors.Is(err, repository.ErrAlreadyCheckedIn) {
		t.Fatalf("re-check-in same room: expected ErrAlreadyCheckedIn, got %v", err)
	}
	if _, err := s.occupancy.CheckIn(ctx, a.ID, other.ID); !errors.Is(err, repository.ErrAlreadyCheckedIn) {
		t.Fatalf("check-in other room: expected ErrAlreadyCheckedIn, got %v", err)
	}

	n, err := s.occupancy.CheckOut(ctx, a.ID, "")
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row closed, got %d", n)
	}

	// Check-out is idempotent: a second call closes nothing.
	n, err = s.occupancy.CheckOut(ctx, a.ID, "")
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows closed, got %d", n)
	}

	// After checking out the attendee can enter again; a fresh row is
	// created, the closed one stays in the history.
	if _, err := s.occupancy.CheckIn(ctx, a.ID, other.ID); err != nil {
		t.Fatalf("second visit: %v", err)
	}
	total, err := s.checkIns.CountForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountForAttendee: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 history rows, got %d", total)
	}
}

func TestOccupancyCheckInRequiresAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.addAttendee(t, "A-PERM00001", "Adele", "Goldberg")
	allowed := s.addRoom(t, "Allowed")
	forbidden := s.addRoom(t, "Forbidden")
	s.assign(t, a.ID, allowed.ID)

	if _, err := s.occupancy.CheckIn(ctx, a.ID, forbidden.ID); !errors.Is(err, repository.ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
	if _, err := s.occupancy.CheckIn(ctx, a.ID, allowed.ID); err != nil {
		t.Fatalf("CheckIn allowed room: %v", err)
	}
}

func TestOccupancyCheckInByPublicID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.addAttendee(t, "A-SCAN00001", "Lynn", "Conway")
	room := s.addRoom(t, "Scanner Door")
	s.assign(t, a.ID, room.ID)

	ci, err := s.occupancy.CheckInByPublicID(ctx, "A-SCAN00001", room.ID)
	if err != nil {
		t.Fatalf("CheckInByPublicID: %v", err)
	}
	if ci.AttendeeID != a.ID {
		t.Fatalf("expected check-in for %s, got %s", a.ID, ci.AttendeeID)
	}

	if _, err := s.occupancy.CheckInByPublicID(ctx, "A-UNKNOWN01", room.ID); !errors.Is(err, repository.ErrAttendeeNotFound) {
		t.Fatalf("expected ErrAttendeeNotFound, got %v", err)
	}
}

func TestOccupancyCheckOutScopedToRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.addAttendee(t, "A-SCOPE0001", "Evelyn", "Granville")
	inRoom := s.addRoom(t, "Occupied")
	otherRoom := s.addRoom(t, "Elsewhere")
	s.assign(t, a.ID, inRoom.ID, otherRoom.ID)

	if _, err := s.occupancy.CheckIn(ctx, a.ID, inRoom.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	// The open check-in is pinned to inRoom; a check-out scoped to the
	// other room must leave it alone.
	n, err := s.occupancy.CheckOut(ctx, a.ID, otherRoom.ID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows closed, got %d", n)
	}
	open, err := s.checkIns.CountOpenForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountOpenForAttendee: %v", err)
	}
	if open != 1 {
		t.Fatalf("expected the check-in to survive, got %d open", open)
	}

	n, err = s.occupancy.CheckOut(ctx, a.ID, inRoom.ID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row closed, got %d", n)
	}
}

func TestOccupancyConcurrentCheckInSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.addAttendee(t, "A-RACE00001", "Shafi", "Goldwasser")
	room := s.addRoom(t, "Contested Door")
	s.assign(t, a.ID, room.ID)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.occupancy.CheckIn(ctx, a.ID, room.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, rejections := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful check-in, got %d", wins)
	}
	if rejections != workers-1 {
		t.Fatalf("expected %d rejections, got %d", workers-1, rejections)
	}

	open, err := s.checkIns.CountOpenForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountOpenForAttendee: %v", err)
	}
	if open != 1 {
		t.Fatalf("expected 1 open row after the race, got %d", open)
	}
}
