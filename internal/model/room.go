package model

import "time"

// Room is a physical space attendees check into. Capacity is advisory
// metadata shown on dashboards; it is never enforced at check-in time.
//
// Fields:
//  ID        - primary key (UUID string).
//  Name      - display name (e.g. "Hall A").
//  Capacity  - advisory seat count (nil when unspecified).
//  CreatedAt - creation timestamp (UTC).
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  *int      `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
