// Package service holds the occupancy engine and the bulk import
// pipeline. Both are plain constructor-injected types with no global
// state: every store handle they touch is passed in explicitly.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/metrics"
	"github.com/venuedesk/room-checkin/internal/model"
	"github.com/venuedesk/room-checkin/internal/queue"
	"github.com/venuedesk/room-checkin/internal/repository"
)

// EventPublisher emits occupancy audit events after a transition has
// committed. Implementations must tolerate being called concurrently.
type EventPublisher func(ctx context.Context, event queue.OccupancyEvent) error

// Occupancy drives the check-in/check-out state machine. Per attendee
// the machine has two states: absent (no open check-in) and present in
// exactly one room (one open check-in). Transitions are evaluated and
// committed as a single transaction against the store; the partial
// unique index on open check-ins closes the window between the
// presence check and the insert, so the invariant holds even when two
// requests for the same attendee race.
type Occupancy struct {
	db          *database.DB
	attendees   *repository.AttendeeRepo
	rooms       *repository.RoomRepo
	assignments *repository.AssignmentRepo
	checkIns    *repository.CheckInRepo
	publish     EventPublisher // nil disables audit events
}

// NewOccupancy constructs the engine. publish may be nil when no broker
// is configured, e.g. in tests.
func NewOccupancy(db *database.DB, attendees *repository.AttendeeRepo, rooms *repository.RoomRepo, assignments *repository.AssignmentRepo, checkIns *repository.CheckInRepo, publish EventPublisher) *Occupancy {
	if db == nil || attendees == nil || rooms == nil || assignments == nil || checkIns == nil {
		panic("nil dependency passed to NewOccupancy")
	}
	return &Occupancy{
		db:          db,
		attendees:   attendees,
		rooms:       rooms,
		assignments: assignments,
		checkIns:    checkIns,
		publish:     publish,
	}
}

// CheckIn transitions an attendee from absent to present in the given
// room. It fails with repository.ErrNotAssigned when no assignment
// exists for the pair and with repository.ErrAlreadyCheckedIn when the
// attendee has an open check-in anywhere, including the target room
// itself (re-scanning a badge must not create a second interval).
func (o *Occupancy) CheckIn(ctx context.Context, attendeeID, roomID string) (*model.CheckIn, error) {
	attendee, err := o.attendees.GetByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	return o.checkIn(ctx, attendee, roomID)
}

// CheckInByPublicID is the QR scan path: it resolves the scanned
// payload to an attendee and checks them into the room. An unknown
// payload fails with repository.ErrAttendeeNotFound.
func (o *Occupancy) CheckInByPublicID(ctx context.Context, publicID, roomID string) (*model.CheckIn, error) {
	attendee, err := o.attendees.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return o.checkIn(ctx, attendee, roomID)
}

func (o *Occupancy) checkIn(ctx context.Context, attendee *model.Attendee, roomID string) (*model.CheckIn, error) {
	room, err := o.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	assigned, err := o.assignments.ExistsTx(ctx, tx, attendee.ID, room.ID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		metrics.CheckInRejections.WithLabelValues("not_assigned").Inc()
		return nil, repository.ErrNotAssigned
	}

	// Friendly-path presence check. The unique index on open check-ins
	// remains the authoritative guard: if another writer slips in between
	// this read and the insert below, the insert fails with
	// ErrAlreadyCheckedIn instead of creating a second open row.
	open, err := o.checkIns.OpenForAttendeeTx(ctx, tx, attendee.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		metrics.CheckInRejections.WithLabelValues("already_present").Inc()
		return nil, repository.ErrAlreadyCheckedIn
	}

	ci := &model.CheckIn{AttendeeID: attendee.ID, RoomID: room.ID}
	if err := o.checkIns.CreateTx(ctx, tx, ci); err != nil {
		if err == repository.ErrAlreadyCheckedIn {
			metrics.CheckInRejections.WithLabelValues("already_present").Inc()
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	metrics.CheckIns.Inc()
	o.emit(ctx, queue.OccupancyEvent{
		Type:         queue.EventCheckIn,
		CheckInID:    ci.ID,
		AttendeeID:   attendee.ID,
		AttendeeName: attendee.FullName(),
		PublicID:     attendee.PublicID,
		RoomID:       room.ID,
		RoomName:     room.Name,
		OccurredAt:   ci.CheckedInAt.Format(time.RFC3339),
	})
	return ci, nil
}

// CheckOut closes the attendee's open check-in, whichever room it is
// in, and returns the number of rows closed. Zero means the attendee
// was already absent; that is a success, not an error, so the operation
// is idempotent. Pass roomID to scope the check-out: an open check-in
// pinned to a different room is then left untouched and zero returned.
func (o *Occupancy) CheckOut(ctx context.Context, attendeeID, roomID string) (int64, error) {
	attendee, err := o.attendees.GetByID(ctx, attendeeID)
	if err != nil {
		return 0, err
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	open, err := o.checkIns.OpenForAttendeeTx(ctx, tx, attendee.ID)
	if err != nil {
		return 0, err
	}
	if open == nil || (roomID != "" && open.RoomID != roomID) {
		// Nothing to close; commit the no-op so the read is released.
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		committed = true
		return 0, nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	n, err := o.checkIns.CloseTx(ctx, tx, open.ID, now)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	if n > 0 {
		metrics.CheckOuts.Inc()
		roomName := ""
		if room, err := o.rooms.GetByID(ctx, open.RoomID); err == nil {
			roomName = room.Name
		}
		o.emit(ctx, queue.OccupancyEvent{
			Type:         queue.EventCheckOut,
			CheckInID:    open.ID,
			AttendeeID:   attendee.ID,
			AttendeeName: attendee.FullName(),
			PublicID:     attendee.PublicID,
			RoomID:       open.RoomID,
			RoomName:     roomName,
			OccurredAt:   now.Format(time.RFC3339),
		})
	}
	return n, nil
}

// emit publishes an audit event, logging and dropping failures. The
// transition has already committed; the audit stream is best effort.
func (o *Occupancy) emit(ctx context.Context, event queue.OccupancyEvent) {
	if o.publish == nil {
		return
	}
	if err := o.publish(ctx, event); err != nil {
		slog.Warn("occupancy event publish failed",
			"type", event.Type, "attendee_id", event.AttendeeID, "error", err)
	}
}
