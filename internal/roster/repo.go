package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"presensi/internal/store"
)

var (
	// ErrNotFound is returned when no student matches.
	ErrNotFound = errors.New("student not found")
	// ErrDuplicateNISN is returned when the NISN is already registered
	// at this school.
	ErrDuplicateNISN = errors.New("nisn already registered")
)

// Repository persists students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a student.
func (r *Repository) Create(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, school_id, nisn, name, class_label, guardian_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.SchoolID, s.NISN, s.Name, s.ClassLabel, s.GuardianPhone)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Student{}, ErrDuplicateNISN
		}
		return Student{}, err
	}
	return s, nil
}

// Get returns one student by school and NISN.
func (r *Repository) Get(ctx context.Context, schoolID, nisn string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, school_id, nisn, name, class_label, guardian_phone, created_at
		FROM students WHERE school_id = $1 AND nisn = $2
	`, schoolID, nisn)
	var s Student
	if err := row.Scan(&s.ID, &s.SchoolID, &s.NISN, &s.Name, &s.ClassLabel, &s.GuardianPhone, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

// List returns a school's students, optionally filtered to one class.
func (r *Repository) List(ctx context.Context, schoolID, classLabel string) ([]Student, error) {
	query := `
		SELECT id, school_id, nisn, name, class_label, guardian_phone, created_at
		FROM students WHERE school_id = $1`
	args := []any{schoolID}
	if classLabel != "" {
		query += ` AND class_label = $2`
		args = append(args, classLabel)
	}
	query += ` ORDER BY class_label, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.NISN, &s.Name, &s.ClassLabel, &s.GuardianPhone, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Snapshot loads a school's roster (or one class of it) as a lookup snapshot.
func (r *Repository) Snapshot(ctx context.Context, schoolID, classLabel string) (*Snapshot, error) {
	students, err := r.List(ctx, schoolID, classLabel)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(students), nil
}

// Update edits the mutable fields of a student.
func (r *Repository) Update(ctx context.Context, schoolID, nisn, name, classLabel, guardianPhone string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = $3, class_label = $4, guardian_phone = $5
		WHERE school_id = $1 AND nisn = $2
	`, schoolID, nisn, name, classLabel, guardianPhone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a student. Attendance rows are intentionally left in place.
func (r *Repository) Delete(ctx context.Context, schoolID, nisn string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM students WHERE school_id = $1 AND nisn = $2
	`, schoolID, nisn)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
