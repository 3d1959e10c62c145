package model

import "time"

// Attendee statuses. Attendees are soft-disabled by flipping Status to
// inactive; rows are only removed by an explicit delete.
const (
	AttendeeStatusActive   = "active"
	AttendeeStatusInactive = "inactive"
)

// Attendee represents a registered event participant. The system ID is
// an opaque UUID used for foreign keys; PublicID is the human-facing
// identifier printed on badges and encoded in QR codes, and is unique
// across all attendees.
//
// Fields:
//  ID        - primary key (UUID string).
//  PublicID  - unique scannable identifier (e.g. "A-7GK2Q9XWM").
//  FirstName - given name.
//  LastName  - family name.
//  Email     - contact email, may be empty.
//  Phone     - contact phone, may be empty.
//  Category  - free-form grouping tag (e.g. "speaker", "press").
//  Status    - active or inactive.
//  CreatedAt - creation timestamp (UTC).
//  UpdatedAt - last update timestamp (UTC).
type Attendee struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"public_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display and audit logs.
func (a *Attendee) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
