package store

import (
	"context"
	"fmt"
)

// Schema is applied idempotently at startup. The unique index on
// (school_id, nisn, day) is what makes a concurrent duplicate check-in fail
// at the store instead of creating a second row for the same day.
const schema = `
CREATE TABLE IF NOT EXISTS schools (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    timezone TEXT NOT NULL DEFAULT '',
    entry_deadline TEXT NOT NULL DEFAULT '07:15',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    school_id UUID REFERENCES schools(id) ON DELETE CASCADE,
    class_label TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_role CHECK (role IN ('admin', 'operator', 'homeroom'))
);

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY,
    school_id UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
    nisn TEXT NOT NULL,
    name TEXT NOT NULL,
    class_label TEXT NOT NULL DEFAULT '',
    guardian_phone TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (school_id, nisn)
);

CREATE TABLE IF NOT EXISTS attendance_records (
    id UUID PRIMARY KEY,
    school_id UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
    nisn TEXT NOT NULL,
    day DATE NOT NULL,
    check_in_at TIMESTAMPTZ NOT NULL,
    check_out_at TIMESTAMPTZ,
    status TEXT,
    UNIQUE (school_id, nisn, day)
);

CREATE INDEX IF NOT EXISTS idx_attendance_school_day
    ON attendance_records (school_id, day);

CREATE TABLE IF NOT EXISTS discipline_notes (
    id UUID PRIMARY KEY,
    school_id UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
    nisn TEXT NOT NULL,
    severity TEXT NOT NULL,
    description TEXT NOT NULL,
    points INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_severity CHECK (severity IN ('ringan', 'sedang', 'berat'))
);

CREATE INDEX IF NOT EXISTS idx_discipline_school_nisn
    ON discipline_notes (school_id, nisn);
`

// Migrate applies the schema. Safe to run on every start.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
