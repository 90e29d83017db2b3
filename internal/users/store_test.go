package users

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// rowDB answers every QueryRow with the same error and records the query.
type rowDB struct {
	err  error
	sql  string
	args []any
}

func (d *rowDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *rowDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (d *rowDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.sql, d.args = sql, args
	return errRow{err: d.err}
}

func TestPgStore_CreateDuplicateEmail(t *testing.T) {
	db := &rowDB{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}

	_, err := NewPgStore(db).Create(context.Background(), NewUser{Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t,
		"INSERT INTO users (id,first_name,last_name,email,password_hash) VALUES ($1,$2,$3,$4,$5) RETURNING "+userColumns,
		db.sql)
}

func TestPgStore_GetByEmailMissing(t *testing.T) {
	db := &rowDB{err: pgx.ErrNoRows}

	u, err := NewPgStore(db).GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Equal(t, "SELECT "+userColumns+" FROM users WHERE email = $1", db.sql)
	assert.Equal(t, []any{"ann@example.com"}, db.args)
}
