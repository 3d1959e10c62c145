package repository

import (
	"context"
	"testing"
)

func TestAssignmentRepoReplaceForAttendee(t *testing.T) {
	db := newTestDB(t)
	attendees := NewAttendeeRepo(db)
	rooms := NewRoomRepo(db)
	assignments := NewAssignmentRepo(db)
	ctx := context.Background()

	a := mustCreateAttendee(t, attendees, "A-REPL00001", "Joan", "Clarke")
	r1 := mustCreateRoom(t, rooms, "Room One")
	r2 := mustCreateRoom(t, rooms, "Room Two")
	r3 := mustCreateRoom(t, rooms, "Room Three")

	if err := assignments.ReplaceForAttendee(ctx, a.ID, []string{r1.ID, r2.ID}); err != nil {
		t.Fatalf("initial replace: %v", err)
	}
	got, err := assignments.ListForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListForAttendee: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(got))
	}

	// The new set replaces the old one wholesale.
	if err := assignments.ReplaceForAttendee(ctx, a.ID, []string{r3.ID}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = assignments.ListForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListForAttendee: %v", err)
	}
	if len(got) != 1 || got[0].RoomID != r3.ID {
		t.Fatalf("expected exactly room three, got %+v", got)
	}

	// Duplicate IDs in the request collapse to one row.
	if err := assignments.ReplaceForAttendee(ctx, a.ID, []string{r1.ID, r1.ID, r1.ID}); err != nil {
		t.Fatalf("replace with duplicates: %v", err)
	}
	got, err = assignments.ListForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListForAttendee: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment after dedupe, got %d", len(got))
	}

	// An empty set clears everything.
	if err := assignments.ReplaceForAttendee(ctx, a.ID, nil); err != nil {
		t.Fatalf("replace with empty set: %v", err)
	}
	got, err = assignments.ListForAttendee(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListForAttendee: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no assignments, got %d", len(got))
	}
}

func TestAssignmentRepoAddForRoomSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	attendees := NewAttendeeRepo(db)
	rooms := NewRoomRepo(db)
	assignments := NewAssignmentRepo(db)
	ctx := context.Background()

	a1 := mustCreateAttendee(t, attendees, "A-ROOM00001", "Mary", "Jackson")
	a2 := mustCreateAttendee(t, attendees, "A-ROOM00002", "Dorothy", "Vaughan")
	room := mustCreateRoom(t, rooms, "Workshop A")

	inserted, err := assignments.AddForRoom(ctx, room.ID, []string{a1.ID})
	if err != nil {
		t.Fatalf("AddForRoom: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got %d", inserted)
	}

	// a1 is already assigned; only a2 counts.
	inserted, err = assignments.AddForRoom(ctx, room.ID, []string{a1.ID, a2.ID})
	if err != nil {
		t.Fatalf("AddForRoom: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted on re-add, got %d", inserted)
	}

	listed, err := assignments.ListForRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListForRoom: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 assigned attendees, got %d", len(listed))
	}
}

func TestAssignmentRepoExistsTx(t *testing.T) {
	db := newTestDB(t)
	attendees := NewAttendeeRepo(db)
	rooms := NewRoomRepo(db)
	assignments := NewAssignmentRepo(db)
	ctx := context.Background()

	a := mustCreateAttendee(t, attendees, "A-EXIST0001", "Radia", "Perlman")
	assigned := mustCreateRoom(t, rooms, "Assigned Room")
	other := mustCreateRoom(t, rooms, "Other Room")
	if _, err := assignments.AddForRoom(ctx, assigned.ID, []string{a.ID}); err != nil {
		t.Fatalf("AddForRoom: %v", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	ok, err := assignments.ExistsTx(ctx, tx, a.ID, assigned.ID)
	if err != nil {
		t.Fatalf("ExistsTx: %v", err)
	}
	if !ok {
		t.Fatal("expected pair to exist")
	}
	ok, err = assignments.ExistsTx(ctx, tx, a.ID, other.ID)
	if err != nil {
		t.Fatalf("ExistsTx: %v", err)
	}
	if ok {
		t.Fatal("expected pair to be absent")
	}
}
