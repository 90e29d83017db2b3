package users

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrEmailTaken is returned by Store.Create when the email is already
// registered.
var ErrEmailTaken = errors.New("email already exists")

type Store interface {
	Create(ctx context.Context, u NewUser) (*User, error)
	// GetByEmail returns (nil, nil) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

const userColumns = "id, first_name, last_name, email, password_hash, created_at, updated_at"

type PgStore struct {
	db postgres.DBTX
	sb sq.StatementBuilderType
}

func NewPgStore(db postgres.DBTX) *PgStore {
	return &PgStore{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PgStore) Create(ctx context.Context, in NewUser) (*User, error) {
	sql, args, err := s.sb.Insert("users").
		Columns("id", "first_name", "last_name", "email", "password_hash").
		Values(uuid.NewString(), in.FirstName, in.LastName, in.Email, in.PasswordHash).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(s.db.QueryRow(ctx, sql, args...))
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *PgStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	sql, args, err := s.sb.Select(userColumns).From("users").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
