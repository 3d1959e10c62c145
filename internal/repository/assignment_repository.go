package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
)

// AssignmentRepo manages the attendee-room permission relation. Each
// (attendee, room) pair exists at most once; a unique index on the pair
// backs both the idempotent additive path and the replace path.
type AssignmentRepo struct {
	db *database.DB
}

// NewAssignmentRepo returns an AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *database.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// AssignmentDetail is an assignment joined with attendee and room names
// for listing in the admin UI.
type AssignmentDetail struct {
	ID           string    `json:"id"`
	AttendeeID   string    `json:"attendee_id"`
	AttendeeName string    `json:"attendee_name"`
	PublicID     string    `json:"public_id"`
	RoomID       string    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssignedAttendee is the attendee-side projection of an assignment,
// returned when listing who may enter a room.
type AssignedAttendee struct {
	AttendeeID string `json:"attendee_id"`
	PublicID   string `json:"public_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
}

// ReplaceForAttendee redefines an attendee's assignment set wholesale:
// every existing row for the attendee is removed and one row per room
// in roomIDs is inserted, all inside a single transaction so no reader
// ever observes the half-replaced state and a failed insert cannot
// strand the attendee without their old set. Duplicate IDs in roomIDs
// are collapsed before insertion.
func (r *AssignmentRepo) ReplaceForAttendee(ctx context.Context, attendeeID string, roomIDs []string) error {
	unique := make([]string, 0, len(roomIDs))
	seen := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_assignments WHERE attendee_id = ?`, attendeeID); err != nil {
		return err
	}
	if len(unique) > 0 {
		now := time.Now().UTC().Unix()
		query := `INSERT INTO room_assignments (id, attendee_id, room_id, created_at) VALUES `
		args := make([]any, 0, len(unique)*4)
		for i, roomID := range unique {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, uuid.NewString(), attendeeID, roomID, now)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// AddForRoom grants room access to each listed attendee, skipping pairs
// that already exist. It returns the number of rows actually inserted;
// skipped duplicates are an accepted outcome, not an error.
func (r *AssignmentRepo) AddForRoom(ctx context.Context, roomID string, attendeeIDs []string) (int64, error) {
	unique := make([]string, 0, len(attendeeIDs))
	seen := make(map[string]struct{}, len(attendeeIDs))
	for _, id := range attendeeIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return 0, nil
	}
	now := time.Now().UTC().Unix()
	query := r.db.InsertIgnore() + ` room_assignments (id, attendee_id, room_id, created_at) VALUES `
	args := make([]any, 0, len(unique)*4)
	for i, attendeeID := range unique {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, uuid.NewString(), attendeeID, roomID, now)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExistsTx reports whether the (attendee, room) pair is assigned. It
// runs inside the caller's transaction so the occupancy engine can
// evaluate the precondition and create the check-in as one atomic unit.
func (r *AssignmentRepo) ExistsTx(ctx context.Context, tx *sql.Tx, attendeeID, roomID string) (bool, error) {
	const q = `SELECT 1 FROM room_assignments WHERE attendee_id = ? AND room_id = ?`
	var one int
	err := tx.QueryRowContext(ctx, q, attendeeID, roomID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForAttendee returns the attendee's assignments ordered by room
// name for deterministic output.
func (r *AssignmentRepo) ListForAttendee(ctx context.Context, attendeeID string) ([]model.Assignment, error) {
	const q = `SELECT a.id, a.attendee_id, a.room_id, a.created_at
	           FROM room_assignments a
	           JOIN rooms r ON r.id = a.room_id
	           WHERE a.attendee_id = ?
	           ORDER BY r.name, a.room_id`
	rows, err := r.db.QueryContext(ctx, q, attendeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Assignment, 0)
	for rows.Next() {
		var a model.Assignment
		var created int64
		if err := rows.Scan(&a.ID, &a.AttendeeID, &a.RoomID, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListForRoom returns the attendees permitted to enter a room, ordered
// by last then first name.
func (r *AssignmentRepo) ListForRoom(ctx context.Context, roomID string) ([]AssignedAttendee, error) {
	const q = `SELECT t.id, t.public_id, t.first_name, t.last_name, t.email
	           FROM room_assignments a
	           JOIN attendees t ON t.id = a.attendee_id
	           WHERE a.room_id = ?
	           ORDER BY t.last_name, t.first_name, t.id`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AssignedAttendee, 0)
	for rows.Next() {
		var a AssignedAttendee
		if err := rows.Scan(&a.AttendeeID, &a.PublicID, &a.FirstName, &a.LastName, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAll returns every assignment with attendee and room names
// denormalized, newest first.
func (r *AssignmentRepo) ListAll(ctx context.Context) ([]AssignmentDetail, error) {
	const q = `SELECT a.id, a.attendee_id, t.first_name, t.last_name, t.public_id,
	                  a.room_id, r.name, a.created_at
	           FROM room_assignments a
	           JOIN attendees t ON t.id = a.attendee_id
	           JOIN rooms r ON r.id = a.room_id
	           ORDER BY a.created_at DESC, a.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AssignmentDetail, 0)
	for rows.Next() {
		var d AssignmentDetail
		var first, last string
		var created int64
		if err := rows.Scan(&d.ID, &d.AttendeeID, &first, &last, &d.PublicID,
			&d.RoomID, &d.RoomName, &created); err != nil {
			return nil, err
		}
		d.AttendeeName = joinName(first, last)
		d.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
