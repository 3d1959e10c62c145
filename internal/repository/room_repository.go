package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/model"
)

// RoomRepo provides CRUD access to the rooms table. Capacity is stored
// but never enforced; it exists for dashboards only.
type RoomRepo struct {
	db *database.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *database.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomSummary is a room together with the number of attendees currently
// inside. Used by the room list endpoint.
type RoomSummary struct {
	model.Room
	OpenCheckIns int `json:"open_check_ins"`
}

// Create inserts a new room, generating the ID when absent.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.CreatedAt = time.Now().UTC().Truncate(time.Second)
	var capacity sql.NullInt64
	if room.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*room.Capacity), Valid: true}
	}
	const q = `INSERT INTO rooms (id, name, capacity, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, room.ID, room.Name, capacity, room.CreatedAt.Unix())
	return err
}

// GetByID returns a room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	const q = `SELECT id, name, capacity, created_at FROM rooms WHERE id = ?`
	var room model.Room
	var capacity sql.NullInt64
	var created int64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.Name, &capacity, &created)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		room.Capacity = &c
	}
	room.CreatedAt = time.Unix(created, 0).UTC()
	return &room, nil
}

// List returns all rooms, newest first, each with its current open
// check-in count.
func (r *RoomRepo) List(ctx context.Context) ([]RoomSummary, error) {
	const q = `SELECT r.id, r.name, r.capacity, r.created_at,
	                  (SELECT COUNT(*) FROM check_ins c
	                   WHERE c.room_id = r.id AND c.checked_out_at IS NULL)
	           FROM rooms r
	           ORDER BY r.created_at DESC, r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomSummary, 0)
	for rows.Next() {
		var s RoomSummary
		var capacity sql.NullInt64
		var created int64
		if err := rows.Scan(&s.ID, &s.Name, &capacity, &created, &s.OpenCheckIns); err != nil {
			return nil, err
		}
		if capacity.Valid {
			c := int(capacity.Int64)
			s.Capacity = &c
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a room along with its assignments and check-in history
// in one transaction. Returns ErrRoomNotFound for an unknown ID.
func (r *RoomRepo) Delete(ctx context.Context, id string) error {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM check_ins WHERE room_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_assignments WHERE room_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Count returns the total number of rooms.
func (r *RoomRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n)
	return n, err
}
