package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Migration is one embedded schema change. DownSQL is kept for manual rollbacks.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// migrationLockID keys the advisory lock that serializes concurrent migrators.
const migrationLockID = 7_340_211

// Migrator applies embedded migrations and records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a Migrator over the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: GetMigrations()}
}

// Migrate applies every pending migration in one transaction. A second
// process starting at the same time waits on the advisory lock and then
// finds nothing left to do.
func (m *Migrator) Migrate(ctx context.Context) error {
	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
			return fmt.Errorf("%w: lock: %v", ErrMigrationFailed, err)
		}
		if _, err := tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`); err != nil {
			return fmt.Errorf("%w: bookkeeping table: %v", ErrMigrationFailed, err)
		}

		var current int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
			return fmt.Errorf("%w: read version: %v", ErrMigrationFailed, err)
		}

		for _, mig := range m.migrations {
			if mig.Version <= current {
				continue
			}
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("%w: version %d (%s): %v", ErrMigrationFailed, mig.Version, mig.Name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name); err != nil {
				return fmt.Errorf("%w: record version %d: %v", ErrMigrationFailed, mig.Version, err)
			}
		}
		return nil
	})
}

// GetMigrations returns all embedded migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_curriculum",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_internship",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_schedule_and_outbox",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CURRICULUM
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Part -> Section -> Step hierarchy. Children are removed with their parent.
CREATE TABLE IF NOT EXISTS parts (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    order_index INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
    id BIGSERIAL PRIMARY KEY,
    part_id BIGINT NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    order_index INTEGER NOT NULL,
    reference_link TEXT,
    duration_days INTEGER,

    CONSTRAINT valid_duration_days CHECK (duration_days IS NULL OR duration_days > 0)
);

CREATE TABLE IF NOT EXISTS steps (
    id BIGSERIAL PRIMARY KEY,
    part_id BIGINT NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
    section_id BIGINT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    kind VARCHAR(10) NOT NULL DEFAULT 'simple',
    order_index INTEGER NOT NULL,
    reference_link TEXT,
    planned_duration_minutes INTEGER,

    CONSTRAINT valid_kind CHECK (kind IN ('simple', 'video', 'photo')),
    CONSTRAINT valid_planned_duration CHECK (planned_duration_minutes IS NULL OR planned_duration_minutes > 0)
);

CREATE INDEX IF NOT EXISTS idx_parts_order ON parts(order_index, id);
CREATE INDEX IF NOT EXISTS idx_sections_part_order ON sections(part_id, order_index, id);
CREATE INDEX IF NOT EXISTS idx_steps_section_order ON steps(section_id, order_index, id);
`

const migration001Down = `
DROP TABLE IF EXISTS steps;
DROP TABLE IF EXISTS sections;
DROP TABLE IF EXISTS parts;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE INTERNSHIP
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS trainees (
    id BIGINT PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    staff_status VARCHAR(20) NOT NULL DEFAULT 'trainee',
    intern_days_completed INTEGER NOT NULL DEFAULT 0,
    training_completed_at TIMESTAMP WITH TIME ZONE,
    training_total_steps_at_completion INTEGER,
    candidate_id BIGINT,
    planned_trade_point_id BIGINT,
    mentor_id BIGINT,

    CONSTRAINT valid_staff_status CHECK (staff_status IN ('trainee', 'employee', 'dismissed')),
    CONSTRAINT valid_intern_days CHECK (intern_days_completed >= 0)
);

CREATE TABLE IF NOT EXISTS sessions (
    id BIGSERIAL PRIMARY KEY,
    trainee_id BIGINT NOT NULL REFERENCES trainees(id) ON DELETE CASCADE,
    day_number INTEGER NOT NULL,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    finished_at TIMESTAMP WITH TIME ZONE,
    started_by BIGINT NOT NULL,
    trade_point_id BIGINT NOT NULL,
    was_late BOOLEAN NOT NULL DEFAULT FALSE,
    is_canceled BOOLEAN NOT NULL DEFAULT FALSE,
    comment TEXT,
    issues TEXT,

    CONSTRAINT valid_day_number CHECK (day_number > 0)
);

CREATE INDEX IF NOT EXISTS idx_sessions_trainee ON sessions(trainee_id, started_at DESC);

-- At most one active session per trainee.
CREATE UNIQUE INDEX IF NOT EXISTS uq_sessions_active_trainee
    ON sessions(trainee_id) WHERE finished_at IS NULL AND NOT is_canceled;

CREATE TABLE IF NOT EXISTS step_results (
    session_id BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    step_id BIGINT NOT NULL REFERENCES steps(id) ON DELETE CASCADE,
    is_passed BOOLEAN NOT NULL DEFAULT FALSE,
    checked_at TIMESTAMP WITH TIME ZONE,
    checked_by BIGINT,
    media_ref TEXT,

    PRIMARY KEY (session_id, step_id)
);

CREATE INDEX IF NOT EXISTS idx_step_results_step ON step_results(step_id);
`

const migration002Down = `
DROP TABLE IF EXISTS step_results;
DROP TABLE IF EXISTS sessions;
DROP TABLE IF EXISTS trainees;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE SCHEDULE AND OUTBOX
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS schedule_records (
    id BIGSERIAL PRIMARY KEY,
    candidate_id BIGINT NOT NULL,
    trainee_id BIGINT,
    trade_point_id BIGINT,
    mentor_id BIGINT,
    planned_date DATE NOT NULL,
    planned_time_from VARCHAR(5) NOT NULL,
    planned_time_to VARCHAR(5) NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'planned',
    session_id BIGINT,
    started_at TIMESTAMP WITH TIME ZONE,
    finished_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_schedule_status CHECK (status IN ('planned', 'started', 'finished'))
);

CREATE INDEX IF NOT EXISTS idx_schedule_candidate_status ON schedule_records(candidate_id, status);
CREATE INDEX IF NOT EXISTS idx_schedule_session ON schedule_records(session_id) WHERE session_id IS NOT NULL;

-- Append-only. A separate relay delivers rows and must tolerate duplicates.
CREATE TABLE IF NOT EXISTS outbox_events (
    id UUID PRIMARY KEY,
    destination VARCHAR(100) NOT NULL,
    event_type VARCHAR(50) NOT NULL,
    payload JSONB NOT NULL,
    dedupe_key VARCHAR(64) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_outbox_created ON outbox_events(created_at);
CREATE INDEX IF NOT EXISTS idx_outbox_dedupe ON outbox_events(dedupe_key);
`

const migration003Down = `
DROP TABLE IF EXISTS outbox_events;
DROP TABLE IF EXISTS schedule_records;
`
