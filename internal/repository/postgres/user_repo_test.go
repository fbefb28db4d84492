package postgres

import (
	"context"
	"testing"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    "alice@example.com",
		Role:     model.RoleDonor,
		PwdHash:  []byte("h"),
		SaltAuth: []byte("s"),
	}

	// OK
	mock.ExpectExec(`INSERT INTO users \(id, email, role, pwd_hash, salt_auth\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(u.ID, u.Email, string(u.Role), u.PwdHash, u.SaltAuth).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Unique violation
	mock.ExpectExec(`INSERT INTO users \(id, email, role, pwd_hash, salt_auth\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(u.ID, u.Email, string(u.Role), u.PwdHash, u.SaltAuth).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, role, pwd_hash, salt_auth, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "pwd_hash", "salt_auth", "created_at"}).
			AddRow(id, "alice@example.com", "donor", []byte("h"), []byte("s"), pgxmock.AnyArg()))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, model.RoleDonor, u.Role)

	mock.ExpectQuery(`SELECT id, email, role, pwd_hash, salt_auth, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	email := "bob@example.com"
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, role, pwd_hash, salt_auth, created_at FROM users WHERE email=\$1`).
		WithArgs(email).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "pwd_hash", "salt_auth", "created_at"}).
			AddRow(id, email, "charity", []byte("h"), []byte("s"), pgxmock.AnyArg()))
	u, err := r.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, email, u.Email)

	mock.ExpectQuery(`SELECT id, email, role, pwd_hash, salt_auth, created_at FROM users WHERE email=\$1`).
		WithArgs(email).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, email)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
