package school

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a school id does not exist.
var ErrNotFound = errors.New("school not found")

// Repository persists tenants in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new school.
func (r *Repository) Create(ctx context.Context, s School) (School, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.EntryDeadline == "" {
		s.EntryDeadline = "07:15"
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO schools (id, name, timezone, entry_deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, s.ID, s.Name, s.Timezone, s.EntryDeadline)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return School{}, err
	}
	return s, nil
}

// Get returns a school by id.
func (r *Repository) Get(ctx context.Context, id string) (School, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, timezone, entry_deadline, created_at
		FROM schools WHERE id = $1
	`, id)
	var s School
	if err := row.Scan(&s.ID, &s.Name, &s.Timezone, &s.EntryDeadline, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return School{}, ErrNotFound
		}
		return School{}, err
	}
	return s, nil
}

// List returns all schools ordered by name.
func (r *Repository) List(ctx context.Context) ([]School, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, timezone, entry_deadline, created_at
		FROM schools ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Name, &s.Timezone, &s.EntryDeadline, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Delete removes a school. Rows in dependent tables cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
