package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
)

// newTestDB opens a fresh sqlite store in a per-test temp directory.
// Migrations run inside Open, so every test starts from empty tables.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateAttendee(t *testing.T, repo *AttendeeRepo, publicID, first, last string) *model.Attendee {
	t.Helper()
	a := &model.Attendee{
		PublicID:  publicID,
		FirstName: first,
		LastName:  last,
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create attendee %s: %v", publicID, err)
	}
	return a
}

func mustCreateRoom(t *testing.T, repo *RoomRepo, name string) *model.Room {
	t.Helper()
	room := &model.Room{Name: name}
	if err := repo.Create(context.Background(), room); err != nil {
		t.Fatalf("create room %s: %v", name, err)
	}
	return room
}
