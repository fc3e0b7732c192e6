// Package discipline records behavioral notes against students.
package discipline

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Severity levels, matching the tiers staff pick from.
const (
	SeverityRingan = "ringan"
	SeveritySedang = "sedang"
	SeverityBerat  = "berat"
)

// Note is one recorded incident.
type Note struct {
	ID          string    `json:"id"`
	SchoolID    string    `json:"school_id"`
	NISN        string    `json:"nisn"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository persists discipline notes in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a note.
func (r *Repository) Create(ctx context.Context, n Note) (Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO discipline_notes (id, school_id, nisn, severity, description, points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, n.ID, n.SchoolID, n.NISN, n.Severity, n.Description, n.Points)
	if err := row.Scan(&n.CreatedAt); err != nil {
		return Note{}, err
	}
	return n, nil
}

// List returns a school's notes, optionally filtered to one student,
// newest first.
func (r *Repository) List(ctx context.Context, schoolID, nisn string, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, school_id, nisn, severity, description, points, created_at
		FROM discipline_notes WHERE school_id = $1`
	args := []any{schoolID}
	if nisn != "" {
		query += ` AND nisn = $2`
		args = append(args, nisn)
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.SchoolID, &n.NISN, &n.Severity, &n.Description, &n.Points, &n.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}
