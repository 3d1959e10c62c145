package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
)

// CheckInRepo records presence intervals in the check_ins table. Rows
// are never deleted on check-out; closing an interval just sets
// checked_out_at, leaving an append-only presence log. The table
// carries a unique index on (attendee_id) restricted to open rows, so
// the database itself guarantees at most one open check-in per attendee
// no matter how many writers race.
type CheckInRepo struct {
	db *database.DB
}

// NewCheckInRepo returns a CheckInRepo bound to the given database.
func NewCheckInRepo(db *database.DB) *CheckInRepo { return &CheckInRepo{db: db} }

// RecentCheckIn is a check-in row with attendee and room names
// denormalized for the dashboard feed.
type RecentCheckIn struct {
	ID           string     `json:"id"`
	AttendeeID   string     `json:"attendee_id"`
	AttendeeName string     `json:"attendee_name"`
	RoomID       string     `json:"room_id"`
	RoomName     string     `json:"room_name"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// PresentAttendee is an open check-in joined with attendee details,
// listed on the room detail view.
type PresentAttendee struct {
	CheckInID   string    `json:"check_in_id"`
	AttendeeID  string    `json:"attendee_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// CreateTx inserts an open check-in row inside the caller's
// transaction, generating the ID and entry timestamp. When the attendee
// already has an open check-in anywhere, the partial unique index
// rejects the insert and ErrAlreadyCheckedIn is returned; this is the
// authoritative guard against concurrent double check-ins.
func (r *CheckInRepo) CreateTx(ctx context.Context, tx *sql.Tx, ci *model.CheckIn) error {
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	ci.CheckedInAt = time.Now().UTC().Truncate(time.Second)
	ci.CheckedOutAt = nil
	const q = `INSERT INTO check_ins (id, attendee_id, room_id, checked_in_at, checked_out_at)
	           VALUES (?, ?, ?, ?, NULL)`
	_, err := tx.ExecContext(ctx, q, ci.ID, ci.AttendeeID, ci.RoomID, ci.CheckedInAt.Unix())
	if database.IsDuplicate(err) {
		return ErrAlreadyCheckedIn
	}
	return err
}

// OpenForAttendeeTx returns the attendee's open check-in inside the
// caller's transaction, or nil when the attendee is absent.
func (r *CheckInRepo) OpenForAttendeeTx(ctx context.Context, tx *sql.Tx, attendeeID string) (*model.CheckIn, error) {
	const q = `SELECT id, attendee_id, room_id, checked_in_at
	           FROM check_ins WHERE attendee_id = ? AND checked_out_at IS NULL`
	var ci model.CheckIn
	var in int64
	err := tx.QueryRowContext(ctx, q, attendeeID).Scan(&ci.ID, &ci.AttendeeID, &ci.RoomID, &in)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ci.CheckedInAt = time.Unix(in, 0).UTC()
	return &ci, nil
}

// CloseTx closes a specific check-in row inside the caller's
// transaction and returns the number of rows closed (0 when the row is
// already closed or gone). Closing never deletes; the row stays in the
// presence log with its exit timestamp set.
func (r *CheckInRepo) CloseTx(ctx context.Context, tx *sql.Tx, id string, at time.Time) (int64, error) {
	const q = `UPDATE check_ins SET checked_out_at = ?
	           WHERE id = ? AND checked_out_at IS NULL`
	res, err := tx.ExecContext(ctx, q, at.UTC().Unix(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OpenByRoom lists the attendees currently present in a room, most
// recent entry first.
func (r *CheckInRepo) OpenByRoom(ctx context.Context, roomID string) ([]PresentAttendee, error) {
	const q = `SELECT c.id, c.attendee_id, t.first_name, t.last_name, t.email, c.checked_in_at
	           FROM check_ins c
	           JOIN attendees t ON t.id = c.attendee_id
	           WHERE c.room_id = ? AND c.checked_out_at IS NULL
	           ORDER BY c.checked_in_at DESC, c.id`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PresentAttendee, 0)
	for rows.Next() {
		var p PresentAttendee
		var in int64
		if err := rows.Scan(&p.CheckInID, &p.AttendeeID, &p.FirstName, &p.LastName, &p.Email, &in); err != nil {
			return nil, err
		}
		p.CheckedInAt = time.Unix(in, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountOpenForAttendee returns how many open check-in rows exist for
// the attendee. Under the storage invariant this is always 0 or 1.
func (r *CheckInRepo) CountOpenForAttendee(ctx context.Context, attendeeID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE attendee_id = ? AND checked_out_at IS NULL`,
		attendeeID).Scan(&n)
	return n, err
}

// CountForAttendee returns the total number of check-in rows (open and
// closed) recorded for the attendee.
func (r *CheckInRepo) CountForAttendee(ctx context.Context, attendeeID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE attendee_id = ?`, attendeeID).Scan(&n)
	return n, err
}

// CountBetween counts check-ins whose entry timestamp falls in
// [from, to). The dashboard passes the bounds of the current calendar
// day in server-local time.
func (r *CheckInRepo) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE checked_in_at >= ? AND checked_in_at < ?`,
		from.Unix(), to.Unix()).Scan(&n)
	return n, err
}

// Recent returns the limit most recent check-ins with attendee and room
// names denormalized.
func (r *CheckInRepo) Recent(ctx context.Context, limit int) ([]RecentCheckIn, error) {
	const q = `SELECT c.id, c.attendee_id, t.first_name, t.last_name,
	                  c.room_id, rm.name, c.checked_in_at, c.checked_out_at
	           FROM check_ins c
	           JOIN attendees t ON t.id = c.attendee_id
	           JOIN rooms rm ON rm.id = c.room_id
	           ORDER BY c.checked_in_at DESC, c.id
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RecentCheckIn, 0, limit)
	for rows.Next() {
		var rc RecentCheckIn
		var first, last string
		var in int64
		var outAt sql.NullInt64
		if err := rows.Scan(&rc.ID, &rc.AttendeeID, &first, &last,
			&rc.RoomID, &rc.RoomName, &in, &outAt); err != nil {
			return nil, err
		}
		rc.AttendeeName = joinName(first, last)
		rc.CheckedInAt = time.Unix(in, 0).UTC()
		if outAt.Valid {
			t := time.Unix(outAt.Int64, 0).UTC()
			rc.CheckedOutAt = &t
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
