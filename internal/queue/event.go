// Package queue defines the occupancy audit events exchanged over the
// message broker, a publisher for emitting them and the background
// consumer that turns them into an append-only audit log.
package queue

// Event types carried in OccupancyEvent.Type.
const (
	EventCheckIn  = "check_in"
	EventCheckOut = "check_out"
)

// OccupancyEvent is published after a check-in or check-out has
// committed. It carries denormalized names so downstream consumers can
// log or feed analytics without querying the primary database.
type OccupancyEvent struct {
	Type         string `json:"type"`
	CheckInID    string `json:"check_in_id"`
	AttendeeID   string `json:"attendee_id"`
	AttendeeName string `json:"attendee_name"`
	PublicID     string `json:"public_id"`
	RoomID       string `json:"room_id"`
	RoomName     string `json:"room_name"`
	OccurredAt   string `json:"occurred_at"`
}
