package model

import "time"

// CheckIn records one physical presence interval of an attendee in a
// room. A nil CheckedOutAt means the attendee is currently present.
// Rows are never deleted by check-out; the table is an append-only
// presence log. At most one open row may exist per attendee at any
// time, across all rooms; that invariant is enforced by a unique
// index at the storage layer, not by application-level checks.
//
// Fields:
//  ID           - primary key (UUID string).
//  AttendeeID   - attendee present in the room.
//  RoomID       - room the attendee entered.
//  CheckedInAt  - entry timestamp (UTC).
//  CheckedOutAt - exit timestamp (UTC), nil while the attendee is inside.
type CheckIn struct {
	ID           string     `json:"id"`
	AttendeeID   string     `json:"attendee_id"`
	RoomID       string     `json:"room_id"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// Open reports whether this interval is still in progress.
func (c *CheckIn) Open() bool { return c.CheckedOutAt == nil }
