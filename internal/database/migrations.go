package database

// Schema notes:
//
//   - attendees.public_id carries a plain unique index; it backs the
//     skip-duplicate semantics of bulk import and rejects duplicate
//     creates.
//   - check_ins must allow at most one open row per attendee. SQLite
//     expresses that directly as a partial unique index. MySQL has no
//     partial indexes, so a stored generated column open_marker holds 1
//     while the row is open and NULL once closed; NULLs never collide
//     in a unique index, so closed history stays unconstrained.
//   - room_assignments are unique per (attendee_id, room_id) so that
//     re-assigning is idempotent.
//
// All timestamps are Unix seconds (UTC) so both dialects compare and
// scan them identically.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS attendees (
		id         TEXT PRIMARY KEY,
		public_id  TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		category   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'active',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendees_public_id ON attendees (public_id)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		capacity   INTEGER,
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS room_assignments (
		id          TEXT PRIMARY KEY,
		attendee_id TEXT NOT NULL REFERENCES attendees (id),
		room_id     TEXT NOT NULL REFERENCES rooms (id),
		created_at  INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_assignments_pair ON room_assignments (attendee_id, room_id)`,

	`CREATE TABLE IF NOT EXISTS check_ins (
		id             TEXT PRIMARY KEY,
		attendee_id    TEXT NOT NULL REFERENCES attendees (id),
		room_id        TEXT NOT NULL REFERENCES rooms (id),
		checked_in_at  INTEGER NOT NULL,
		checked_out_at INTEGER
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_check_ins_open
		ON check_ins (attendee_id) WHERE checked_out_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS ix_check_ins_room ON check_ins (room_id)`,
	`CREATE INDEX IF NOT EXISTS ix_check_ins_time ON check_ins (checked_in_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS attendees (
		id         VARCHAR(36) PRIMARY KEY,
		public_id  VARCHAR(64) NOT NULL,
		first_name VARCHAR(128) NOT NULL,
		last_name  VARCHAR(128) NOT NULL,
		email      VARCHAR(255) NOT NULL DEFAULT '',
		phone      VARCHAR(64) NOT NULL DEFAULT '',
		category   VARCHAR(64) NOT NULL DEFAULT '',
		status     VARCHAR(16) NOT NULL DEFAULT 'active',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		UNIQUE KEY uq_attendees_public_id (public_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         VARCHAR(36) PRIMARY KEY,
		name       VARCHAR(128) NOT NULL,
		capacity   INT NULL,
		created_at BIGINT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS room_assignments (
		id          VARCHAR(36) PRIMARY KEY,
		attendee_id VARCHAR(36) NOT NULL,
		room_id     VARCHAR(36) NOT NULL,
		created_at  BIGINT NOT NULL,
		UNIQUE KEY uq_assignments_pair (attendee_id, room_id),
		CONSTRAINT fk_assignments_attendee FOREIGN KEY (attendee_id) REFERENCES attendees (id),
		CONSTRAINT fk_assignments_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS check_ins (
		id             VARCHAR(36) PRIMARY KEY,
		attendee_id    VARCHAR(36) NOT NULL,
		room_id        VARCHAR(36) NOT NULL,
		checked_in_at  BIGINT NOT NULL,
		checked_out_at BIGINT NULL,
		open_marker    TINYINT GENERATED ALWAYS AS (IF(checked_out_at IS NULL, 1, NULL)) STORED,
		UNIQUE KEY uq_check_ins_open (attendee_id, open_marker),
		KEY ix_check_ins_room (room_id),
		KEY ix_check_ins_time (checked_in_at),
		CONSTRAINT fk_check_ins_attendee FOREIGN KEY (attendee_id) REFERENCES attendees (id),
		CONSTRAINT fk_check_ins_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// migrate applies the schema for the handle's dialect. Statements are
// idempotent, so running at every startup is safe.
func migrate(db *DB) error {
	stmts := mysqlSchema
	if db.driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
