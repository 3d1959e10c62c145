package model

import "time"

// Assignment grants an attendee permission to check into a room. The
// (AttendeeID, RoomID) pair is unique; re-assigning the same pair is a
// no-op rather than a second row. Assignments exist independently of
// check-in history: revoking one does not touch past check-ins.
type Assignment struct {
	ID         string    `json:"id"`
	AttendeeID string    `json:"attendee_id"`
	RoomID     string    `json:"room_id"`
	CreatedAt  time.Time `json:"created_at"`
}
