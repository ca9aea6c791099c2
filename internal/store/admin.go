package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Admin is a registered administrator account.
type Admin struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	// ErrAdminNotFound is returned when no admin matches the email.
	ErrAdminNotFound = errors.New("admin not found")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
)

// AdminStore persists admin accounts.
type AdminStore struct {
	db DBTX
}

// NewAdminStore creates an AdminStore over the given connection.
func NewAdminStore(db DBTX) *AdminStore {
	return &AdminStore{db: db}
}

// FindByEmail returns the admin registered under email, or
// ErrAdminNotFound.
func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, email, name, password_hash, created_at FROM admins WHERE email = $1",
		email,
	)

	var a Admin
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

// Create inserts a new admin with a generated id. A unique-constraint
// violation on email maps to ErrEmailTaken.
func (s *AdminStore) Create(ctx context.Context, email, name, passwordHash string) (*Admin, error) {
	a := &Admin{ID: uuid.New(), Email: email, Name: name, PasswordHash: passwordHash}

	row := s.db.QueryRow(ctx,
		`INSERT INTO admins (id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		a.ID, a.Email, a.Name, a.PasswordHash,
	)
	if err := row.Scan(&a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}
