package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
)

// AttendeeRepo provides CRUD access to the attendees table. The public
// ID column carries a unique index; Create translates violations into
// ErrDuplicatePublicID so callers never see driver errors. All
// timestamps are stored as Unix seconds in UTC.
type AttendeeRepo struct {
	db *database.DB
}

// NewAttendeeRepo returns an AttendeeRepo bound to the given database.
func NewAttendeeRepo(db *database.DB) *AttendeeRepo { return &AttendeeRepo{db: db} }

// DB exposes the underlying handle so services can open transactions
// spanning multiple repositories.
func (r *AttendeeRepo) DB() *database.DB { return r.db }

const attendeeColumns = `id, public_id, first_name, last_name, email, phone, category, status, created_at, updated_at`

func scanAttendee(row interface{ Scan(...any) error }) (*model.Attendee, error) {
	var a model.Attendee
	var created, updated int64
	if err := row.Scan(&a.ID, &a.PublicID, &a.FirstName, &a.LastName, &a.Email,
		&a.Phone, &a.Category, &a.Status, &created, &updated); err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(created, 0).UTC()
	a.UpdatedAt = time.Unix(updated, 0).UTC()
	return &a, nil
}

// Create inserts a new attendee. A missing ID is generated, a missing
// status defaults to active, and both timestamps are set to now. A
// public ID collision returns ErrDuplicatePublicID.
func (r *AttendeeRepo) Create(ctx context.Context, a *model.Attendee) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.AttendeeStatusActive
	}
	now := time.Now().UTC().Truncate(time.Second)
	a.CreatedAt = now
	a.UpdatedAt = now

	const q = `INSERT INTO attendees (` + attendeeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.PublicID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.Category, a.Status, now.Unix(), now.Unix(),
	)
	if database.IsDuplicate(err) {
		return ErrDuplicatePublicID
	}
	return err
}

// CreateBatchIgnore inserts a batch of attendees in one statement using
// skip-duplicate semantics keyed on the public ID unique index: a
// colliding record is silently dropped, not merged and not a batch
// failure. It returns the number of rows actually inserted. Bulk import
// relies on this to stay idempotent per record.
func (r *AttendeeRepo) CreateBatchIgnore(ctx context.Context, batch []model.Attendee) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	now := time.Now().UTC().Truncate(time.Second)
	query := r.db.InsertIgnore() + ` attendees (` + attendeeColumns + `) VALUES `
	args := make([]any, 0, len(batch)*10)
	for i := range batch {
		a := &batch[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Status == "" {
			a.Status = model.AttendeeStatusActive
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			a.ID, a.PublicID, a.FirstName, a.LastName, a.Email, a.Phone,
			a.Category, a.Status, now.Unix(), now.Unix())
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetByID returns the attendee with the given system ID or
// ErrAttendeeNotFound.
func (r *AttendeeRepo) GetByID(ctx context.Context, id string) (*model.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = ?`
	a, err := scanAttendee(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrAttendeeNotFound
	}
	return a, err
}

// GetByPublicID returns the attendee carrying the given public ID.
// This is the lookup used by the QR scan path, where the scanned
// payload equals the public ID. Returns ErrAttendeeNotFound when no
// attendee matches.
func (r *AttendeeRepo) GetByPublicID(ctx context.Context, publicID string) (*model.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees WHERE public_id = ?`
	a, err := scanAttendee(r.db.QueryRowContext(ctx, q, publicID))
	if err == sql.ErrNoRows {
		return nil, ErrAttendeeNotFound
	}
	return a, err
}

// List returns all attendees, newest first.
func (r *AttendeeRepo) List(ctx context.Context) ([]model.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of an attendee: names, contact
// details, category and status. The public ID is immutable after
// creation since badges may already carry it. Returns
// ErrAttendeeNotFound when the row does not exist.
func (r *AttendeeRepo) Update(ctx context.Context, a *model.Attendee) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE attendees
	           SET first_name = ?, last_name = ?, email = ?, phone = ?, category = ?, status = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		a.FirstName, a.LastName, a.Email, a.Phone, a.Category, a.Status, now.Unix(), a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update;
		// distinguish with an existence probe.
		var one int
		if probeErr := r.db.QueryRowContext(ctx, `SELECT 1 FROM attendees WHERE id = ?`, a.ID).Scan(&one); probeErr == sql.ErrNoRows {
			return ErrAttendeeNotFound
		} else if probeErr != nil {
			return probeErr
		}
	}
	a.UpdatedAt = now
	return nil
}

// Delete removes an attendee together with their assignments and full
// check-in history in one transaction. Deleting an unknown ID returns
// ErrAttendeeNotFound.
func (r *AttendeeRepo) Delete(ctx context.Context, id string) error {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM check_ins WHERE attendee_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_assignments WHERE attendee_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM attendees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttendeeNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Count returns the total number of attendees.
func (r *AttendeeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees`).Scan(&n)
	return n, err
}
