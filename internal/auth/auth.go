// Package auth registers login accounts for staff.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
)

const MinPasswordLength = 6

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
)

// Store keeps accounts in the auth_users table
type Store struct {
	pool *pgxpool.Pool
	cost int
}

// NewStore creates an auth store hashing with bcrypt's default cost
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, cost: bcrypt.DefaultCost}
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks the address format and password length.
func ValidateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword bcrypt-hashes password
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignUp creates an account and returns its user id
func (s *Store) SignUp(ctx context.Context, email, password string, metadata map[string]any) (uuid.UUID, error) {
	email = NormalizeEmail(email)
	if err := ValidateCredentials(email, password); err != nil {
		return uuid.Nil, err
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return uuid.Nil, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	var id uuid.UUID
	err = s.pool.QueryRow(ctx, `
		INSERT INTO auth_users (email, password_hash, metadata)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, hash, metadata).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// DeleteUser removes an account
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auth_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
