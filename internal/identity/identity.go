// Package identity holds staff accounts and credential login. It plays the
// identity-provider role for the rest of the service; the attendance core
// never sees it.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"presensi/internal/auth"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrBadCredentials is returned on email/password mismatch. Deliberately
	// the same for unknown email and wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
)

// User is a staff account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	SchoolID     *string   `json:"school_id,omitempty"`
	ClassLabel   *string   `json:"class_label,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user with a hashed password.
func (r *Repository) Create(ctx context.Context, email, password, role string, schoolID, classLabel *string) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:         uuid.NewString(),
		Email:      email,
		Role:       role,
		SchoolID:   schoolID,
		ClassLabel: classLabel,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, school_id, class_label)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, u.ID, u.Email, hash, u.Role, u.SchoolID, u.ClassLabel)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByEmail returns a user with password hash for login checks.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, school_id, class_label, created_at
		FROM users WHERE email = $1
	`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.SchoolID, &u.ClassLabel, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// List returns all users, newest first.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, password_hash, role, school_id, class_label, created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.SchoolID, &u.ClassLabel, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// UpdatePassword re-hashes and stores a new password for the user.
func (r *Repository) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, userID, hash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a user by id.
func (r *Repository) GetByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, school_id, class_label, created_at
		FROM users WHERE id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.SchoolID, &u.ClassLabel, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns the matching user.
func (r *Repository) Login(ctx context.Context, email, password string) (User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, ErrBadCredentials
	}
	return u, nil
}
