package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrIdentityNotFound   = errors.New("identity not found")
)

// CredentialStore issues and validates identities. Identities carry no
// role or tenant binding; that lives in the user directory. Passwords
// are stored as bcrypt hashes and compared with constant-time
// verification.
type CredentialStore interface {
	Authenticate(ctx context.Context, email, password string) (uuid.UUID, error)
	CreateIdentity(ctx context.Context, email, password string, preVerified bool) (uuid.UUID, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxStore struct {
	db DB
}

func NewPgxStore(db DB) CredentialStore {
	return &pgxStore{db: db}
}

func (s *pgxStore) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	var id uuid.UUID
	var passwordHash string
	query := `SELECT id, password_hash FROM identities WHERE email = $1`
	err := s.db.QueryRow(ctx, query, email).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	return id, nil
}

func (s *pgxStore) CreateIdentity(ctx context.Context, email, password string, preVerified bool) (uuid.UUID, error) {
	var count int
	emailCheckQuery := `SELECT COUNT(*) FROM identities WHERE email = $1`
	if err := s.db.QueryRow(ctx, emailCheckQuery, email).Scan(&count); err != nil {
		return uuid.Nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return uuid.Nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO identities (id, email, password_hash, email_verified, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	if _, err := s.db.Exec(ctx, query, id, email, string(hash), preVerified); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return id, nil
}

func (s *pgxStore) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM identities WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *pgxStore) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := `UPDATE identities SET password_hash = $1 WHERE id = $2`
	tag, err := s.db.Exec(ctx, query, string(hash), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
