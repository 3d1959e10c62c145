// Package repository implements data access for attendees, rooms,
// assignments and check-ins on top of database/sql. Sentinel errors
// defined here let handlers map failure modes onto HTTP statuses
// without inspecting driver errors.
package repository

import "errors"

// ErrAttendeeNotFound is returned when no attendee matches the given
// system ID or public ID. Handlers translate it into a 404.
var ErrAttendeeNotFound = errors.New("attendee not found")

// ErrRoomNotFound is returned when no room matches the given ID.
// Handlers translate it into a 404.
var ErrRoomNotFound = errors.New("room not found")

// ErrDuplicatePublicID is returned when creating an attendee whose
// public ID is already taken. Bulk import never sees this error: its
// inserts use skip-duplicate semantics instead. Handlers translate it
// into a 409.
var ErrDuplicatePublicID = errors.New("public id already in use")

// ErrNotAssigned is returned when a check-in is attempted for an
// (attendee, room) pair with no assignment. Handlers translate it into
// a 403.
var ErrNotAssigned = errors.New("attendee is not assigned to this room")

// ErrAlreadyCheckedIn is returned when a check-in is attempted while
// the attendee has an open check-in in any room, including the target
// room itself. Handlers translate it into a 409.
var ErrAlreadyCheckedIn = errors.New("attendee is already checked in")
