package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"presensi/internal/store"
)

// Repository persists attendance records in Postgres. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindSince returns the day's record for a student, or nil when absent.
func (r *Repository) FindSince(ctx context.Context, schoolID, nisn string, since time.Time) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, school_id, nisn, day, check_in_at, check_out_at, status
		FROM attendance_records
		WHERE school_id = $1 AND nisn = $2 AND check_in_at >= $3
		ORDER BY check_in_at
		LIMIT 1
	`, schoolID, nisn, since)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.SchoolID, &rec.NISN, &rec.Day, &rec.CheckInAt, &rec.CheckOutAt, &rec.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Insert writes a new record. The unique index on (school_id, nisn, day)
// turns a concurrent duplicate into ErrDuplicateDay.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, school_id, nisn, day, check_in_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.SchoolID, rec.NISN, rec.Day, rec.CheckInAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Record{}, ErrDuplicateDay
		}
		return Record{}, err
	}
	return rec, nil
}

// SetCheckOut sets the check-out timestamp by primary key. A record the
// close-out sweep already labeled no_checkout gets that label cleared: the
// row must not claim both a check-out and a missing one. NULL here means
// unlabeled, which reads correctly for a late-arriving check-out.
func (r *Repository) SetCheckOut(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET check_out_at = $2,
		    status = CASE WHEN status = $3 THEN NULL ELSE status END
		WHERE id = $1
	`, id, at, StatusNoCheckout)
	return err
}

// SetStatus labels a record after the fact (present/late/no_checkout).
func (r *Repository) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records SET status = $2 WHERE id = $1
	`, id, status)
	return err
}

// ListSince returns a school's records with check-in at or after since,
// newest first.
func (r *Repository) ListSince(ctx context.Context, schoolID string, since time.Time, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, school_id, nisn, day, check_in_at, check_out_at, status
		FROM attendance_records
		WHERE school_id = $1 AND check_in_at >= $2
		ORDER BY check_in_at DESC
		LIMIT $3
	`, schoolID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRange returns a school's records for an inclusive day range.
func (r *Repository) ListRange(ctx context.Context, schoolID string, from, to time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, school_id, nisn, day, check_in_at, check_out_at, status
		FROM attendance_records
		WHERE school_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day, check_in_at
	`, schoolID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CloseOutBefore marks one school's records from days before the cutoff that
// never got a check-out. Rows are labeled, never deleted, and an already
// labeled row is left alone so repeat sweeps stay idempotent.
func (r *Repository) CloseOutBefore(ctx context.Context, schoolID string, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET status = $3
		WHERE school_id = $1 AND day < $2 AND check_out_at IS NULL
		  AND status IS DISTINCT FROM $3
	`, schoolID, before, StatusNoCheckout)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SchoolID, &rec.NISN, &rec.Day, &rec.CheckInAt, &rec.CheckOutAt, &rec.Status); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
